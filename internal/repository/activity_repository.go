package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/store"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

const resourceActivity = "activity"

// ActivityRepository manages assignments and their deliveries.
type ActivityRepository struct {
	store  *store.Store
	audit  *AuditRepository
	logger *zap.Logger
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(s *store.Store, audit *AuditRepository, logger *zap.Logger) *ActivityRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRepository{store: s, audit: audit, logger: logger}
}

// Create registers an activity bound to an existing class.
func (r *ActivityRepository) Create(ctx context.Context, actor authz.Actor, activity *models.Activity) (*models.Activity, error) {
	if d := authz.Check(actor.Role, authz.ActionActivityCreate); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	activity.ClassCode = canonicalKey(activity.ClassCode)

	var class models.Class
	if err := r.store.Get(store.CollectionClasses, activity.ClassCode, &class); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class code not registered")
	}

	activity.ID = uuid.NewString()
	if activity.Deliveries == nil {
		activity.Deliveries = map[string]models.Delivery{}
	}
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	if err := r.store.Put(store.CollectionActivities, activity.ID, activity); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionCreate, activity.ID)
	return activity, nil
}

// Get fetches an activity by id.
func (r *ActivityRepository) Get(ctx context.Context, actor authz.Actor, id string) (*models.Activity, error) {
	if d := authz.Check(actor.Role, authz.ActionActivityRead); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	var activity models.Activity
	if err := r.store.Get(store.CollectionActivities, id, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByClass returns all activities belonging to a class.
func (r *ActivityRepository) ListByClass(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error) {
	if d := authz.Check(actor.Role, authz.ActionActivityRead); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	classCode = canonicalKey(classCode)

	var activities []models.Activity
	err := r.store.Scan(store.CollectionActivities, func(_ string, raw json.RawMessage) error {
		var a models.Activity
		if err := json.Unmarshal(raw, &a); err != nil {
			return err
		}
		if a.ClassCode == classCode {
			activities = append(activities, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// RecordDelivery stores or replaces a student's submission. A professor
// may submit on behalf of any RA; a student only for the record it owns.
func (r *ActivityRepository) RecordDelivery(ctx context.Context, actor authz.Actor, id, ra, file string) (*models.Activity, error) {
	if d := authz.Check(actor.Role, authz.ActionActivityDeliver); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	ra = canonicalKey(ra)

	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student RA not registered")
	}
	if actor.Role == authz.RoleStudent && student.OwnerUsername != actor.Username {
		return nil, appErrors.Clone(appErrors.ErrDenied, "")
	}

	var activity models.Activity
	if err := r.store.Get(store.CollectionActivities, id, &activity); err != nil {
		return nil, err
	}

	delivery := activity.Deliveries[ra]
	delivery.File = file
	if activity.Deliveries == nil {
		activity.Deliveries = map[string]models.Delivery{}
	}
	activity.Deliveries[ra] = delivery
	activity.UpdatedAt = time.Now().UTC()

	if err := r.store.Put(store.CollectionActivities, id, &activity); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionWrite, id)
	return &activity, nil
}

// SetDeliveryGrade marks a student's submission with a grade in 0..10.
func (r *ActivityRepository) SetDeliveryGrade(ctx context.Context, actor authz.Actor, id, ra string, grade float64) (*models.Activity, error) {
	if d := authz.Check(actor.Role, authz.ActionActivityGrade); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	if grade < 0 || grade > 10 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "grade must be between 0 and 10")
	}
	ra = canonicalKey(ra)

	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student RA not registered")
	}

	var activity models.Activity
	if err := r.store.Get(store.CollectionActivities, id, &activity); err != nil {
		return nil, err
	}

	delivery := activity.Deliveries[ra]
	delivery.Grade = &grade
	if activity.Deliveries == nil {
		activity.Deliveries = map[string]models.Delivery{}
	}
	activity.Deliveries[ra] = delivery
	activity.UpdatedAt = time.Now().UTC()

	if err := r.store.Put(store.CollectionActivities, id, &activity); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionWrite, id)
	return &activity, nil
}

func (r *ActivityRepository) appendAudit(ctx context.Context, actor authz.Actor, action, recordID string) {
	if err := r.audit.Append(ctx, actor.Username, action, resourceActivity, recordID); err != nil {
		r.logger.Warn("failed to append audit entry",
			zap.String("actor", actor.Username),
			zap.String("action", action),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
