// Package repository exposes role-checked access to the persisted
// entities. Every operation re-validates the caller against the authz
// gate even when an upstream middleware already did, and every successful
// mutation appends an audit entry. For the student role, record access is
// scoped to the caller's own record; crossing that scope yields a denial
// that is indistinguishable from not-found on the wire.
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

const resourceStudent = "student"

// StudentRepository manages student records with role and ownership
// checks on every call.
type StudentRepository struct {
	store  *store.Store
	audit  *AuditRepository
	logger *zap.Logger
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(s *store.Store, audit *AuditRepository, logger *zap.Logger) *StudentRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentRepository{store: s, audit: audit, logger: logger}
}

// Create registers a new student record. The owner username must
// reference an existing credential with the student role.
func (r *StudentRepository) Create(ctx context.Context, actor authz.Actor, student *models.Student) (*models.Student, error) {
	if d := authz.Check(actor.Role, authz.ActionStudentCreate); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	student.RA = canonicalKey(student.RA)

	var existing models.Student
	err := r.store.Get(store.CollectionStudents, student.RA, &existing)
	if err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "RA already registered")
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		return nil, err
	}

	var owner models.Credential
	if err := r.store.Get(store.CollectionCredentials, student.OwnerUsername, &owner); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "owner username does not reference a credential")
	}
	if owner.Role != authz.RoleStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "owner credential is not a student")
	}

	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	if err := r.store.Put(store.CollectionStudents, student.RA, student); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionCreate, student.RA)
	return student, nil
}

// Get fetches a student record. A student caller may only reach the
// record it owns; any other RA is denied before existence is consulted.
func (r *StudentRepository) Get(ctx context.Context, actor authz.Actor, ra string) (*models.Student, error) {
	if d := authz.Check(actor.Role, authz.ActionStudentRead); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	ra = canonicalKey(ra)

	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return nil, err
	}
	if actor.Role == authz.RoleStudent && student.OwnerUsername != actor.Username {
		return nil, appErrors.Clone(appErrors.ErrDenied, "")
	}
	return &student, nil
}

// GetByOwner locates the record owned by the actor's username.
func (r *StudentRepository) GetByOwner(ctx context.Context, actor authz.Actor) (*models.Student, error) {
	if d := authz.Check(actor.Role, authz.ActionStudentRead); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	var found *models.Student
	err := r.store.Scan(store.CollectionStudents, func(_ string, raw json.RawMessage) error {
		var s models.Student
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if s.OwnerUsername == actor.Username && !s.Archived {
			found = &s
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

// List returns all non-archived student records, ordered by RA.
func (r *StudentRepository) List(ctx context.Context, actor authz.Actor) ([]models.Student, error) {
	if d := authz.Check(actor.Role, authz.ActionStudentList); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	var students []models.Student
	err := r.store.Scan(store.CollectionStudents, func(_ string, raw json.RawMessage) error {
		var s models.Student
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		if !s.Archived {
			students = append(students, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// SetGrades updates any provided subset of NP1/NP2/PIM on the record.
// Values must stay within 0..10.
func (r *StudentRepository) SetGrades(ctx context.Context, actor authz.Actor, ra string, np1, np2, pim *float64) (*models.Student, error) {
	if d := authz.Check(actor.Role, authz.ActionStudentGrade); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	for _, g := range []*float64{np1, np2, pim} {
		if g != nil && (*g < 0 || *g > 10) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grades must be between 0 and 10")
		}
	}
	ra = canonicalKey(ra)

	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return nil, err
	}

	if np1 != nil {
		student.NP1 = np1
	}
	if np2 != nil {
		student.NP2 = np2
	}
	if pim != nil {
		student.PIM = pim
	}
	student.UpdatedAt = time.Now().UTC()

	if err := r.store.Put(store.CollectionStudents, ra, &student); err != nil {
		return nil, err
	}
	r.appendAudit(ctx, actor, models.AuditActionWrite, ra)
	return &student, nil
}

// Archive soft-deletes the record, preserving referential history.
func (r *StudentRepository) Archive(ctx context.Context, actor authz.Actor, ra string) error {
	if d := authz.Check(actor.Role, authz.ActionStudentArchive); !d.Allowed {
		return appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	ra = canonicalKey(ra)

	var student models.Student
	if err := r.store.Get(store.CollectionStudents, ra, &student); err != nil {
		return err
	}
	if student.Archived {
		return nil
	}
	student.Archived = true
	student.UpdatedAt = time.Now().UTC()

	if err := r.store.Put(store.CollectionStudents, ra, &student); err != nil {
		return err
	}
	r.appendAudit(ctx, actor, models.AuditActionArchive, ra)
	return nil
}

// appendAudit records the mutation trace right after the data write. The
// two writes are separate store mutations: a crash in between can lose
// the audit entry for an applied write, which is an accepted limitation.
func (r *StudentRepository) appendAudit(ctx context.Context, actor authz.Actor, action, recordID string) {
	if err := r.audit.Append(ctx, actor.Username, action, resourceStudent, recordID); err != nil {
		r.logger.Warn("failed to append audit entry",
			zap.String("actor", actor.Username),
			zap.String("action", action),
			zap.String("record_id", recordID),
			zap.Error(err))
	}
}
