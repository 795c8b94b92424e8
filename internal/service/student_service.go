package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type studentRecordRepository interface {
	Create(ctx context.Context, actor authz.Actor, student *models.Student) (*models.Student, error)
	Get(ctx context.Context, actor authz.Actor, ra string) (*models.Student, error)
	GetByOwner(ctx context.Context, actor authz.Actor) (*models.Student, error)
	List(ctx context.Context, actor authz.Actor) ([]models.Student, error)
	SetGrades(ctx context.Context, actor authz.Actor, ra string, np1, np2, pim *float64) (*models.Student, error)
	Archive(ctx context.Context, actor authz.Actor, ra string) error
}

type studentClassFinder interface {
	FindByStudent(ctx context.Context, ra string) (*models.Class, error)
}

// CreateStudentRequest is the payload for registering a student record.
type CreateStudentRequest struct {
	RA            string `json:"ra" validate:"required"`
	Name          string `json:"name" validate:"required"`
	Course        string `json:"course" validate:"required"`
	OwnerUsername string `json:"owner_username" validate:"required"`
}

// SetGradesRequest carries a partial grade update; absent fields keep
// their stored values.
type SetGradesRequest struct {
	NP1 *float64 `json:"np1" validate:"omitempty,gte=0,lte=10"`
	NP2 *float64 `json:"np2" validate:"omitempty,gte=0,lte=10"`
	PIM *float64 `json:"pim" validate:"omitempty,gte=0,lte=10"`
}

// StudentService exposes student record use cases on top of the
// role-checked repository.
type StudentService struct {
	students  studentRecordRepository
	classes   studentClassFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(students studentRecordRepository, classes studentClassFinder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{students: students, classes: classes, validator: validate, logger: logger}
}

// Create registers a new student record.
func (s *StudentService) Create(ctx context.Context, actor authz.Actor, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{
		RA:            req.RA,
		Name:          req.Name,
		Course:        req.Course,
		OwnerUsername: req.OwnerUsername,
	}
	return s.students.Create(ctx, actor, student)
}

// Get returns a single student record, subject to ownership scoping.
func (s *StudentService) Get(ctx context.Context, actor authz.Actor, ra string) (*models.Student, error) {
	return s.students.Get(ctx, actor, ra)
}

// List returns all non-archived records.
func (s *StudentService) List(ctx context.Context, actor authz.Actor) ([]models.Student, error) {
	return s.students.List(ctx, actor)
}

// SetGrades updates the provided subset of NP1/NP2/PIM.
func (s *StudentService) SetGrades(ctx context.Context, actor authz.Actor, ra string, req SetGradesRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grades payload")
	}
	if req.NP1 == nil && req.NP2 == nil && req.PIM == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one grade must be provided")
	}
	return s.students.SetGrades(ctx, actor, ra, req.NP1, req.NP2, req.PIM)
}

// Grades returns the consolidated grade view for a record.
func (s *StudentService) Grades(ctx context.Context, actor authz.Actor, ra string) (*models.GradeView, error) {
	student, err := s.students.Get(ctx, actor, ra)
	if err != nil {
		return nil, err
	}
	view := student.Grades()
	return &view, nil
}

// Archive soft-deletes a record.
func (s *StudentService) Archive(ctx context.Context, actor authz.Actor, ra string) error {
	return s.students.Archive(ctx, actor, ra)
}

// Status composes the portal view for the record: identity, enrolled
// class and consolidated grades. Student callers with an empty RA get
// their own record.
func (s *StudentService) Status(ctx context.Context, actor authz.Actor, ra string) (*models.StudentStatus, error) {
	var (
		student *models.Student
		err     error
	)
	if ra == "" && actor.Role == authz.RoleStudent {
		student, err = s.students.GetByOwner(ctx, actor)
	} else {
		student, err = s.students.Get(ctx, actor, ra)
	}
	if err != nil {
		return nil, err
	}

	status := &models.StudentStatus{
		RA:        student.RA,
		Name:      student.Name,
		Course:    student.Course,
		GradeView: student.Grades(),
	}

	class, err := s.classes.FindByStudent(ctx, student.RA)
	if err != nil {
		if !errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
	} else {
		status.Class = &class.Name
	}
	return status, nil
}
