// Package auth validates bearer tokens and makes role-based access decisions.
//
// The identity middleware turns the Authorization header into an Identity
// value; handlers pass that value explicitly into every service call.
package auth

import "slices"

// Identity is the caller as established by the token validator
type Identity struct {
	Subject       string
	Authenticated bool
	Roles         []string
}

// Anonymous returns the identity used when no valid token was presented
func Anonymous() Identity {
	return Identity{}
}

// HasRole reports whether the identity carries the given role claim.
// Comparison is case-sensitive.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}
