package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/store"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

const resourceClass = "class"

// ClassRepository manages class records.
type ClassRepository struct {
	store  *store.Store
	audit  *AuditRepository
	logger *zap.Logger
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(s *store.Store, audit *AuditRepository, logger *zap.Logger) *ClassRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassRepository{store: s, audit: audit, logger: logger}
}

// Create registers a new class under a unique code.
func (r *ClassRepository) Create(ctx context.Context, actor authz.Actor, class *models.Class) (*models.Class, error) {
	if d := authz.Check(actor.Role, authz.ActionClassCreate); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	class.Code = canonicalKey(class.Code)

	var existing models.Class
	err := r.store.Get(store.CollectionClasses, class.Code, &existing)
	if err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class code already registered")
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		return nil, err
	}

	if class.Students == nil {
		class.Students = []string{}
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	if err := r.store.Put(store.CollectionClasses, class.Code, class); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionCreate, class.Code)
	return class, nil
}

// Get fetches a class by code. Students may read classes (their portal
// shows the enrolled class); the gate table governs access.
func (r *ClassRepository) Get(ctx context.Context, actor authz.Actor, code string) (*models.Class, error) {
	if d := authz.Check(actor.Role, authz.ActionClassRead); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	var class models.Class
	if err := r.store.Get(store.CollectionClasses, canonicalKey(code), &class); err != nil {
		return nil, err
	}
	return &class, nil
}

// List returns every class ordered by code.
func (r *ClassRepository) List(ctx context.Context, actor authz.Actor) ([]models.Class, error) {
	if d := authz.Check(actor.Role, authz.ActionClassList); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	var classes []models.Class
	err := r.store.Scan(store.CollectionClasses, func(_ string, raw json.RawMessage) error {
		var c models.Class
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		classes = append(classes, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return classes, nil
}

// AddStudent enrolls an existing student RA into the class. Duplicate
// enrollment is a no-op.
func (r *ClassRepository) AddStudent(ctx context.Context, actor authz.Actor, code, ra string) (*models.Class, error) {
	if d := authz.Check(actor.Role, authz.ActionClassEnroll); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	code, ra = canonicalKey(code), canonicalKey(ra)

	var class models.Class
	if err := r.store.Get(store.CollectionClasses, code, &class); err != nil {
		return nil, err
	}
	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student RA not registered")
	}

	if class.HasStudent(ra) {
		return &class, nil
	}
	class.Students = append(class.Students, ra)
	class.UpdatedAt = time.Now().UTC()

	if err := r.store.Put(store.CollectionClasses, code, &class); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionWrite, code)
	return &class, nil
}

// FindByStudent returns the first class enrolling the RA, if any.
func (r *ClassRepository) FindByStudent(ctx context.Context, ra string) (*models.Class, error) {
	ra = canonicalKey(ra)
	var found *models.Class
	err := r.store.Scan(store.CollectionClasses, func(_ string, raw json.RawMessage) error {
		if found != nil {
			return nil
		}
		var c models.Class
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		if c.HasStudent(ra) {
			found = &c
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return found, nil
}

func (r *ClassRepository) appendAudit(ctx context.Context, actor authz.Actor, action, recordID string) {
	if err := r.audit.Append(ctx, actor.Username, action, resourceClass, recordID); err != nil {
		r.logger.Warn("failed to append audit entry",
			zap.String("actor", actor.Username),
			zap.String("action", action),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
