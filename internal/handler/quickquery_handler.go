package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/service"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// QuickQueryHandler exposes the consulta_rapida endpoints.
type QuickQueryHandler struct {
	queries *service.QuickQueryService
}

// NewQuickQueryHandler constructs QuickQueryHandler.
func NewQuickQueryHandler(queries *service.QuickQueryService) *QuickQueryHandler {
	return &QuickQueryHandler{queries: queries}
}

// ClassActivities lists the activities of a class.
func (h *QuickQueryHandler) ClassActivities(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	activities, err := h.queries.ClassActivities(c.Request.Context(), session.Actor(), c.Param("turma"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities)
}

// DeliveryPendencies lists the RAs without a submission, per activity.
func (h *QuickQueryHandler) DeliveryPendencies(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pendencies, err := h.queries.DeliveryPendencies(c.Request.Context(), session.Actor(), c.Param("turma"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pendencies)
}

// GradePendencies lists the ungraded submissions, per activity.
func (h *QuickQueryHandler) GradePendencies(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	pendencies, err := h.queries.GradePendencies(c.Request.Context(), session.Actor(), c.Param("turma"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pendencies)
}
