package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/repository"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// AuditHandler exposes the audit trail. Route-level RBAC restricts it to
// professors.
type AuditHandler struct {
	audit *repository.AuditRepository
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(audit *repository.AuditRepository) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List returns the audit entries in chronological order.
func (h *AuditHandler) List(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	entries, err := h.audit.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}
