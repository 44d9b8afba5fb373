package models

const (
	// SuperadminInitials marks the account that cannot be changed through the update path
	SuperadminInitials = "ADM"

	// RoleAdmin is the role claim granting administrative operations
	RoleAdmin = "Admin"
)

// Field limits mirrored by the accounts table
const (
	MaxDisplayNameLength = 100
	MaxInitialsLength    = 3
	MaxEmailLength       = 100
	MaxPasswordHash      = 200

	// bcrypt only considers the first 72 bytes
	MaxPasswordLength = 72
)
