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

func (e *testEnv) createActivity(t *testing.T, classCode, title string) *models.Activity {
	t.Helper()
	activity, err := e.acts.Create(context.Background(), professorActor, &models.Activity{
		ClassCode: classCode,
		Title:     title,
		DueDate:   "2026-09-30",
	})
	require.NoError(t, err)
	return activity
}

func TestActivityCreateRequiresExistingClass(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.acts.Create(context.Background(), professorActor, &models.Activity{
		ClassCode: "ghost", Title: "x", DueDate: "2026-01-01",
	})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestActivityCreateAssignsID(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")

	activity := env.createActivity(t, "T1", "Trabalho 1")
	assert.NotEmpty(t, activity.ID)
	assert.NotNil(t, activity.Deliveries)
}

func TestActivityListByClass(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createClass(t, "T2")
	env.createActivity(t, "T1", "A")
	env.createActivity(t, "T2", "B")

	activities, err := env.acts.ListByClass(context.Background(), professorActor, "T1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "A", activities[0].Title)
}

func TestRecordDeliveryForOwnRA(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")

	got, err := env.acts.RecordDelivery(context.Background(), studentActor, activity.ID, "R1", "trabalho.pdf")
	require.NoError(t, err)
	assert.Equal(t, "trabalho.pdf", got.Deliveries["R1"].File)
	assert.Nil(t, got.Deliveries["R1"].Grade)
}

// A student submitting on behalf of someone else's RA gets the same
// denial shape as a missing record.
func TestRecordDeliveryForeignRADenied(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")

	_, err := env.acts.RecordDelivery(context.Background(), otherActor, activity.ID, "R1", "x.pdf")
	assert.True(t, errors.Is(err, appErrors.ErrDenied))
}

func TestRecordDeliveryReplacesFile(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")
	ctx := context.Background()

	_, err := env.acts.RecordDelivery(ctx, studentActor, activity.ID, "R1", "v1.pdf")
	require.NoError(t, err)
	got, err := env.acts.RecordDelivery(ctx, studentActor, activity.ID, "R1", "v2.pdf")
	require.NoError(t, err)
	assert.Equal(t, "v2.pdf", got.Deliveries["R1"].File)
}

func TestSetDeliveryGrade(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")
	ctx := context.Background()

	_, err := env.acts.RecordDelivery(ctx, studentActor, activity.ID, "R1", "x.pdf")
	require.NoError(t, err)

	got, err := env.acts.SetDeliveryGrade(ctx, professorActor, activity.ID, "R1", 8.5)
	require.NoError(t, err)
	require.NotNil(t, got.Deliveries["R1"].Grade)
	assert.Equal(t, 8.5, *got.Deliveries["R1"].Grade)
	assert.Equal(t, "x.pdf", got.Deliveries["R1"].File)
}

func TestSetDeliveryGradeRequiresProfessor(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")

	_, err := env.acts.SetDeliveryGrade(context.Background(), studentActor, activity.ID, "R1", 8)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
}

func TestSetDeliveryGradeValidatesRange(t *testing.T) {
	env := newTestEnv(t)
	env.createClass(t, "T1")
	env.createStudent(t, "R1", "aluno")
	activity := env.createActivity(t, "T1", "Trabalho 1")

	_, err := env.acts.SetDeliveryGrade(context.Background(), professorActor, activity.ID, "R1", 11)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
