package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type classRepository interface {
	Create(ctx context.Context, actor authz.Actor, class *models.Class) (*models.Class, error)
	Get(ctx context.Context, actor authz.Actor, code string) (*models.Class, error)
	List(ctx context.Context, actor authz.Actor) ([]models.Class, error)
	AddStudent(ctx context.Context, actor authz.Actor, code, ra string) (*models.Class, error)
}

// CreateClassRequest is the payload for registering a class.
type CreateClassRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// EnrollStudentRequest enrolls an RA into a class.
type EnrollStudentRequest struct {
	RA string `json:"ra" validate:"required"`
}

// ClassService exposes class management use cases.
type ClassService struct {
	classes   classRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(classes classRepository, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{classes: classes, validator: validate, logger: logger}
}

// Create registers a new class.
func (s *ClassService) Create(ctx context.Context, actor authz.Actor, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	return s.classes.Create(ctx, actor, &models.Class{Code: req.Code, Name: req.Name})
}

// Get fetches one class.
func (s *ClassService) Get(ctx context.Context, actor authz.Actor, code string) (*models.Class, error) {
	return s.classes.Get(ctx, actor, code)
}

// List returns all classes.
func (s *ClassService) List(ctx context.Context, actor authz.Actor) ([]models.Class, error) {
	return s.classes.List(ctx, actor)
}

// Enroll adds a student to a class.
func (s *ClassService) Enroll(ctx context.Context, actor authz.Actor, code string, req EnrollStudentRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	return s.classes.AddStudent(ctx, actor, code, req.RA)
}
