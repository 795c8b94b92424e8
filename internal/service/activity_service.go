package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type activityRepository interface {
	Create(ctx context.Context, actor authz.Actor, activity *models.Activity) (*models.Activity, error)
	Get(ctx context.Context, actor authz.Actor, id string) (*models.Activity, error)
	ListByClass(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error)
	RecordDelivery(ctx context.Context, actor authz.Actor, id, ra, file string) (*models.Activity, error)
	SetDeliveryGrade(ctx context.Context, actor authz.Actor, id, ra string, grade float64) (*models.Activity, error)
}

// CreateActivityRequest is the payload for registering an assignment.
type CreateActivityRequest struct {
	ClassCode string `json:"class_code" validate:"required"`
	Title     string `json:"title" validate:"required"`
	DueDate   string `json:"due_date" validate:"required"`
}

// RecordDeliveryRequest records a submission file for an RA.
type RecordDeliveryRequest struct {
	RA   string `json:"ra" validate:"required"`
	File string `json:"file" validate:"required"`
}

// GradeDeliveryRequest marks a submission with a grade.
type GradeDeliveryRequest struct {
	RA    string  `json:"ra" validate:"required"`
	Grade float64 `json:"grade" validate:"gte=0,lte=10"`
}

// ActivityService exposes assignment use cases.
type ActivityService struct {
	activities activityRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(activities activityRepository, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ActivityService{activities: activities, validator: validate, logger: logger}
}

// Create registers an activity for a class.
func (s *ActivityService) Create(ctx context.Context, actor authz.Actor, req CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity := &models.Activity{
		ClassCode: req.ClassCode,
		Title:     req.Title,
		DueDate:   req.DueDate,
	}
	return s.activities.Create(ctx, actor, activity)
}

// Get fetches one activity.
func (s *ActivityService) Get(ctx context.Context, actor authz.Actor, id string) (*models.Activity, error) {
	return s.activities.Get(ctx, actor, id)
}

// ListByClass returns the activities of a class.
func (s *ActivityService) ListByClass(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error) {
	return s.activities.ListByClass(ctx, actor, classCode)
}

// RecordDelivery stores a submission.
func (s *ActivityService) RecordDelivery(ctx context.Context, actor authz.Actor, id string, req RecordDeliveryRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delivery payload")
	}
	return s.activities.RecordDelivery(ctx, actor, id, req.RA, req.File)
}

// GradeDelivery marks a submission with a grade.
func (s *ActivityService) GradeDelivery(ctx context.Context, actor authz.Actor, id string, req GradeDeliveryRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	return s.activities.SetDeliveryGrade(ctx, actor, id, req.RA, req.Grade)
}
