package auth

import (
	"errors"

	"github.com/khabaroff/staff-accounts/src/models"
)

var (
	// ErrUnauthenticated indicates the caller presented no valid token
	ErrUnauthenticated = errors.New("authentication required")

	// ErrInsufficientRole indicates the caller is authenticated but lacks the required role
	ErrInsufficientRole = errors.New("admin privileges required")
)

// Requirement is the access class an operation demands
type Requirement int

const (
	// RequireAuthenticated allows any authenticated caller
	RequireAuthenticated Requirement = iota + 1
	// RequireAdmin allows authenticated callers holding the Admin role
	RequireAdmin
)

// DenyReason tells callers why a decision was negative
type DenyReason int

const (
	ReasonNone DenyReason = iota
	ReasonUnauthenticated
	ReasonInsufficientRole
)

// Decision is the outcome of Authorize
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err converts a denial into its sentinel error; nil when allowed
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Reason == ReasonUnauthenticated:
		return ErrUnauthenticated
	default:
		return ErrInsufficientRole
	}
}

// Authorize decides whether id satisfies req. It is a pure function.
func Authorize(id Identity, req Requirement) Decision {
	if !id.Authenticated {
		return Decision{Reason: ReasonUnauthenticated}
	}

	switch req {
	case RequireAuthenticated:
		return Decision{Allowed: true}
	case RequireAdmin:
		if id.HasRole(models.RoleAdmin) {
			return Decision{Allowed: true}
		}
	}

	return Decision{Reason: ReasonInsufficientRole}
}

// Check is shorthand for Authorize(id, req).Err()
func Check(id Identity, req Requirement) error {
	return Authorize(id, req).Err()
}
