package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Sentinel errors for explicit error handling.
// Callers distinguish failure modes with errors.Is instead of string matching.
var (
	// ErrNotFound indicates the requested account does not exist
	ErrNotFound = errors.New("account not found")

	// ErrConflict indicates a mutation was rejected to preserve an account invariant
	ErrConflict = errors.New("conflict")

	// ErrDuplicateInitials indicates another account already uses the initials
	ErrDuplicateInitials = fmt.Errorf("%w: an account with the same initials already exists", ErrConflict)

	// ErrLastActiveAdmin indicates the update would leave no active administrator
	ErrLastActiveAdmin = fmt.Errorf("%w: at least one active administrator must remain", ErrConflict)

	// ErrConcurrentUpdate indicates the account changed between read and write
	ErrConcurrentUpdate = fmt.Errorf("%w: the account was modified concurrently", ErrConflict)

	// ErrForbidden indicates the superadmin account was targeted by an update
	ErrForbidden = errors.New("the superadmin account cannot be changed")

	// ErrValidation indicates missing or malformed input
	ErrValidation = errors.New("validation failed")

	// ErrStoreUnavailable indicates the account store could not serve the request
	ErrStoreUnavailable = errors.New("account store unavailable")

	// ErrInvalidCredentials indicates authentication failed
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// newValidationError converts an ozzo-validation result into a ValidationError
func newValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]string, len(fieldErrs))
		for name, fieldErr := range fieldErrs {
			fields[name] = fieldErr.Error()
		}
		return &ValidationError{Fields: fields}
	}

	return &ValidationError{Fields: map[string]string{"request": err.Error()}}
}
