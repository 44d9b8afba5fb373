package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/logging"
	"github.com/khabaroff/staff-accounts/src/middleware"
	"github.com/khabaroff/staff-accounts/src/services"
)

// respondError maps a service error onto a status code and a message that is
// safe to return. Anything unexpected is logged with the request ID.
func respondError(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		logger := logging.ComponentLogger("handlers", middleware.GetRequestID(c))
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", status).
			Msg("request failed")
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func errorResponse(err error) (int, gin.H) {
	var vErr *services.ValidationError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, gin.H{"error": auth.ErrUnauthenticated.Error()}
	case errors.Is(err, auth.ErrInsufficientRole):
		return http.StatusForbidden, gin.H{"error": auth.ErrInsufficientRole.Error()}
	case errors.As(err, &vErr):
		return http.StatusBadRequest, gin.H{"error": "validation failed", "fields": vErr.Fields}
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, gin.H{"error": "validation failed"}
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, gin.H{"error": services.ErrNotFound.Error()}
	case errors.Is(err, services.ErrLastActiveAdmin):
		return http.StatusConflict, gin.H{"error": "at least one active administrator must remain"}
	case errors.Is(err, services.ErrDuplicateInitials):
		return http.StatusConflict, gin.H{"error": "an account with the same initials already exists"}
	case errors.Is(err, services.ErrConcurrentUpdate):
		return http.StatusConflict, gin.H{"error": "the account was modified concurrently, retry"}
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict, gin.H{"error": "conflict"}
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()}
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": services.ErrInvalidCredentials.Error()}
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable"}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}

// badRequest responds to malformed input that never reached the service
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
