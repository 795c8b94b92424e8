package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

func (e *testEnv) createClass(t *testing.T, code string) *models.Class {
	t.Helper()
	class, err := e.classes.Create(context.Background(), professorActor, &models.Class{
		Code: code,
		Name: "Turma " + code,
	})
	require.NoError(t, err)
	return class
}

func TestClassCreateRequiresProfessor(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.classes.Create(context.Background(), studentActor, &models.Class{Code: "T1", Name: "x"})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestClassCreateRejectsDuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")

	_, err := env.classes.Create(context.Background(), professorActor, &models.Class{Code: "T1", Name: "y"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestClassAddStudent(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	ctx := context.Background()

	class, err := env.classes.AddStudent(ctx, professorActor, "T1", "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, class.Students)

	// enrolling twice is a no-op
	class, err = env.classes.AddStudent(ctx, professorActor, "T1", "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, class.Students)
}

func TestClassAddStudentRejectsUnknownRA(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")

	_, err := env.classes.AddStudent(context.Background(), professorActor, "T1", "ghost")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestClassFindByStudent(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	ctx := context.Background()

	_, err := env.classes.AddStudent(ctx, professorActor, "T1", "R1")
	require.NoError(t, err)

	class, err := env.classes.FindByStudent(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, "T1", class.Code)

	_, err = env.classes.FindByStudent(ctx, "R9")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

// Class codes and enrolled RAs resolve regardless of the case they were
// typed in, so chatbot and HTTP callers reach the same records.
func TestClassCodeIsCaseInsensitive(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "tads01")
	env.createStudent(t, "R1", "aluno")
	ctx := context.Background()

	class, err := env.classes.Get(ctx, professorActor, "TADS01")
	require.NoError(t, err)
	assert.Equal(t, "TADS01", class.Code)

	class, err = env.classes.AddStudent(ctx, professorActor, "Tads01", "r1")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1"}, class.Students)

	found, err := env.classes.FindByStudent(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "TADS01", found.Code)
}

func TestClassListOrderedByCode(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T2")
	env.createClass(t, "T1")

	classes, err := env.classes.List(context.Background(), professorActor)
	require.NoError(t, err)
	require.Len(t, classes, 2)
	assert.Equal(t, "T1", classes[0].Code)
	assert.Equal(t, "T2", classes[1].Code)
}
