package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pimacad/academico-api/internal/service"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/response"
)

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	classes    *service.ClassService
	activities *service.ActivityService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, activities *service.ActivityService) *ClassHandler {
	return &ClassHandler{classes: classes, activities: activities}
}

// Create registers a class.
func (h *ClassHandler) Create(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}

	class, err := h.classes.Create(c.Request.Context(), session.Actor(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// List returns all classes.
func (h *ClassHandler) List(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	classes, err := h.classes.List(c.Request.Context(), session.Actor())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Get fetches one class by code.
func (h *ClassHandler) Get(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	class, err := h.classes.Get(c.Request.Context(), session.Actor(), c.Param("codigo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Enroll adds a student RA to the class.
func (h *ClassHandler) Enroll(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	class, err := h.classes.Enroll(c.Request.Context(), session.Actor(), c.Param("codigo"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Activities lists the activities of the class.
func (h *ClassHandler) Activities(c *gin.Context) {
	session := sessionFromContext(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	activities, err := h.activities.ListByClass(c.Request.Context(), session.Actor(), c.Param("codigo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities)
}
