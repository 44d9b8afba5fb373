package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/services"
)

// AuthHandler handles credential exchange
type AuthHandler struct {
	logins *services.LoginService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logins *services.LoginService) *AuthHandler {
	return &AuthHandler{logins: logins}
}

// HandleLogin exchanges initials and password for a bearer token
func (ah *AuthHandler) HandleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := ah.logins.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
