package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/khabaroff/staff-accounts/src/auth"
	"github.com/khabaroff/staff-accounts/src/middleware"
	"github.com/khabaroff/staff-accounts/src/models"
	"github.com/khabaroff/staff-accounts/src/services"
)

// AccountHandler exposes account management over HTTP
type AccountHandler struct {
	accounts *services.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *services.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// gate applies the requirement before any input is parsed
func gate(c *gin.Context, req auth.Requirement) (auth.Identity, bool) {
	caller := middleware.GetIdentity(c)
	if err := auth.Check(caller, req); err != nil {
		respondError(c, err)
		return caller, false
	}
	return caller, true
}

func parseAccountID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid account id")
		return uuid.Nil, false
	}
	return id, true
}

// HandleList returns every account
func (h *AccountHandler) HandleList(c *gin.Context) {
	caller, ok := gate(c, auth.RequireAdmin)
	if !ok {
		return
	}

	views, err := h.accounts.List(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "accounts retrieved",
		"data":    views,
	})
}

// HandleGet returns a single account
func (h *AccountHandler) HandleGet(c *gin.Context) {
	caller, ok := gate(c, auth.RequireAuthenticated)
	if !ok {
		return
	}
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	view, err := h.accounts.Get(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "account retrieved",
		"data":    view,
	})
}

// HandleCreate creates an account and points Location at it
func (h *AccountHandler) HandleCreate(c *gin.Context) {
	caller, ok := gate(c, auth.RequireAdmin)
	if !ok {
		return
	}

	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	view, err := h.accounts.Create(c.Request.Context(), caller, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", "/users/"+view.ID.String())
	c.JSON(http.StatusCreated, gin.H{
		"message": "account created",
		"data":    view,
	})
}

// HandleUpdate applies a partial update
func (h *AccountHandler) HandleUpdate(c *gin.Context) {
	caller, ok := gate(c, auth.RequireAdmin)
	if !ok {
		return
	}
	id, ok := parseAccountID(c)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	view, err := h.accounts.Update(c.Request.Context(), caller, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "account updated",
		"data":    view,
	})
}
