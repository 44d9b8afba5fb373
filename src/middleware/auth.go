package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/auth"
)

// IdentityKey is the context key for the caller identity
const IdentityKey = "identity"

// IdentityResolver turns an Authorization header into an identity
type IdentityResolver interface {
	Authenticate(authHeader string) auth.Identity
}

// Authenticate resolves the bearer token on every request and stores the
// resulting identity. It never rejects a request: a missing or invalid token
// yields the anonymous identity and the account service decides.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(IdentityKey, resolver.Authenticate(c.GetHeader("Authorization")))
		c.Next()
	}
}

// GetIdentity retrieves the caller identity from context.
// Requests that bypassed Authenticate are anonymous.
func GetIdentity(c *gin.Context) auth.Identity {
	if v, exists := c.Get(IdentityKey); exists {
		if id, ok := v.(auth.Identity); ok {
			return id
		}
	}
	return auth.Anonymous()
}
