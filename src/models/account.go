package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a staff account managed by the service
type Account struct {
	ID           uuid.UUID `json:"id"`
	DisplayName  string    `json:"name"`
	Initials     string    `json:"initials"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	PasswordHash string    `json:"-"` // never expose
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountView is the public projection of an account. It has no password field.
type AccountView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"name"`
	Initials    string    `json:"initials"`
	IsAdmin     bool      `json:"is_admin"`
	IsActive    bool      `json:"is_active"`
	Email       string    `json:"email"`
}

// View projects the account for output
func (a *Account) View() AccountView {
	return AccountView{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Initials:    a.Initials,
		IsAdmin:     a.IsAdmin,
		IsActive:    a.IsActive,
		Email:       a.Email,
	}
}

// Clone returns a copy that can be mutated without touching the original
func (a *Account) Clone() *Account {
	c := *a
	return &c
}

// CreateAccountRequest is the payload for creating an account
type CreateAccountRequest struct {
	Name     string `json:"name"`
	Initials string `json:"initials"`
	IsAdmin  *bool  `json:"is_admin"`
	IsActive *bool  `json:"is_active"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// UpdateAccountRequest is the payload for updating an account.
// Nil string fields leave the stored value unchanged; IsAdmin and IsActive
// are mandatory and always overwrite.
type UpdateAccountRequest struct {
	Name     *string `json:"name"`
	Initials *string `json:"initials"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
	Password *string `json:"password"`
	Email    *string `json:"email"`
}

// LoginRequest is the payload for exchanging credentials for a bearer token
type LoginRequest struct {
	Initials string `json:"initials"`
	Password string `json:"password"`
}
