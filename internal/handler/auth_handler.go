package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/service"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// AuthHandler wires HTTP endpoints to the session authenticator.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login authenticates a credential and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Me describes the authenticated caller.
func (h *AuthHandler) Me(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, models.MeResponse{Username: session.Username, Role: session.Role})
}

// Logout discards the caller's session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(c.Request.Context(), session.Token); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
