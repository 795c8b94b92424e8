package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
)

// Demo identities provisioned on an empty store.
const (
	DemoProfessorUsername = "professor"
	DemoProfessorPassword = "prof123"
	DemoStudentUsername   = "aluno"
	DemoStudentPassword   = "aluno123"
	DemoStudentRA         = "H76DJH0"
	DemoClassCode         = "TADS01"
)

type seedCredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	Count(ctx context.Context) int
}

type seedStudentRepository interface {
	Create(ctx context.Context, actor authz.Actor, student *models.Student) (*models.Student, error)
}

type seedClassRepository interface {
	Create(ctx context.Context, actor authz.Actor, class *models.Class) (*models.Class, error)
	AddStudent(ctx context.Context, actor authz.Actor, code, ra string) (*models.Class, error)
}

// Seeder provisions the demo credentials and records used by local
// development. It only acts on a store with no credentials at all.
type Seeder struct {
	creds      seedCredentialRepository
	students   seedStudentRepository
	classes    seedClassRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder constructs a Seeder.
func NewSeeder(creds seedCredentialRepository, students seedStudentRepository, classes seedClassRepository, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{creds: creds, students: students, classes: classes, bcryptCost: bcryptCost, logger: logger}
}

// Run seeds the demo data when the credential collection is empty.
func (s *Seeder) Run(ctx context.Context) error {
	if s.creds.Count(ctx) > 0 {
		s.logger.Debug("credentials present, skipping seed")
		return nil
	}

	profHash, err := bcrypt.GenerateFromPassword([]byte(DemoProfessorPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.creds.Create(ctx, &models.Credential{
		Username:     DemoProfessorUsername,
		PasswordHash: string(profHash),
		Role:         authz.RoleProfessor,
	}); err != nil {
		return err
	}

	studentHash, err := bcrypt.GenerateFromPassword([]byte(DemoStudentPassword), s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.creds.Create(ctx, &models.Credential{
		Username:     DemoStudentUsername,
		PasswordHash: string(studentHash),
		Role:         authz.RoleStudent,
	}); err != nil {
		return err
	}

	professor := authz.Actor{Username: DemoProfessorUsername, Role: authz.RoleProfessor}

	if _, err := s.students.Create(ctx, professor, &models.Student{
		RA:            DemoStudentRA,
		Name:          "Aluno de Demonstração",
		Course:        "Análise e Desenvolvimento de Sistemas",
		OwnerUsername: DemoStudentUsername,
	}); err != nil {
		return err
	}

	if _, err := s.classes.Create(ctx, professor, &models.Class{
		Code: DemoClassCode,
		Name: "Tecnologia em Análise e Desenvolvimento de Sistemas",
	}); err != nil {
		return err
	}
	if _, err := s.classes.AddStudent(ctx, professor, DemoClassCode, DemoStudentRA); err != nil {
		return err
	}

	s.logger.Info("demo data seeded",
		zap.String("professor", DemoProfessorUsername),
		zap.String("student", DemoStudentUsername),
		zap.String("ra", DemoStudentRA),
		zap.String("class", DemoClassCode))
	return nil
}
