package services

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/khabaroff/staff-accounts/src/models"
)

// noNUL rejects text that contains NUL, which the text columns cannot hold
var noNUL = validation.Match(regexp.MustCompile(`^[^\x00]*$`)).Error("must not contain NUL characters")

func validateCreateRequest(req models.CreateAccountRequest) error {
	return newValidationError(validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, models.MaxDisplayNameLength), noNUL),
		validation.Field(&req.Initials, validation.Required, validation.RuneLength(1, models.MaxInitialsLength), noNUL),
		validation.Field(&req.IsAdmin, validation.NotNil),
		validation.Field(&req.IsActive, validation.NotNil),
		validation.Field(&req.Password, validation.Required, validation.Length(1, models.MaxPasswordLength)),
		validation.Field(&req.Email, validation.RuneLength(0, models.MaxEmailLength), noNUL),
	))
}

// validateUpdateRequest allows nil for the partial fields but requires both flags
func validateUpdateRequest(req models.UpdateAccountRequest) error {
	return newValidationError(validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.RuneLength(1, models.MaxDisplayNameLength), noNUL),
		validation.Field(&req.Initials, validation.NilOrNotEmpty, validation.RuneLength(1, models.MaxInitialsLength), noNUL),
		validation.Field(&req.IsAdmin, validation.NotNil),
		validation.Field(&req.IsActive, validation.NotNil),
		validation.Field(&req.Password, validation.NilOrNotEmpty, validation.Length(1, models.MaxPasswordLength)),
		validation.Field(&req.Email, validation.RuneLength(0, models.MaxEmailLength), noNUL),
	))
}

func validateLoginRequest(req models.LoginRequest) error {
	return newValidationError(validation.ValidateStruct(&req,
		validation.Field(&req.Initials, validation.Required, validation.RuneLength(1, models.MaxInitialsLength), noNUL),
		validation.Field(&req.Password, validation.Required, validation.Length(1, models.MaxPasswordLength)),
	))
}
