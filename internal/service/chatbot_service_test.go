package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type mockStudentStatus struct {
	status *models.StudentStatus
	err    error
	lastRA string
}

func (m *mockStudentStatus) Status(ctx context.Context, actor authz.Actor, ra string) (*models.StudentStatus, error) {
	m.lastRA = ra
	if m.err != nil {
		return nil, m.err
	}
	return m.status, nil
}

type mockQuickQueries struct {
	activities []models.Activity
	delivery   []ActivityPendency
	grades     []ActivityPendency
	err        error
}

func (m *mockQuickQueries) ClassActivities(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error) {
	return m.activities, m.err
}

func (m *mockQuickQueries) DeliveryPendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error) {
	return m.delivery, m.err
}

func (m *mockQuickQueries) GradePendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error) {
	return m.grades, m.err
}

type mockIntentObserver struct {
	seen []string
}

func (m *mockIntentObserver) ObserveIntent(name string) {
	m.seen = append(m.seen, name)
}

func studentSession() *models.Session {
	return &models.Session{Username: "aluno", Role: authz.RoleStudent}
}

func professorSession() *models.Session {
	return &models.Session{Username: "professor", Role: authz.RoleProfessor}
}

func TestAskMyStatus(t *testing.T) {
	media := 7.8
	students := &mockStudentStatus{status: &models.StudentStatus{
		RA:     "H76DJH0",
		Name:   "Aluno de Demonstração",
		Course: "ADS",
		GradeView: models.GradeView{
			Media:     &media,
			Situation: models.SituationApproved,
		},
	}}
	observer := &mockIntentObserver{}
	svc := NewChatbotService(students, &mockQuickQueries{}, observer, nil, nil)

	res, err := svc.Ask(context.Background(), studentSession(), models.AskRequest{Message: "meu status"})
	require.NoError(t, err)

	assert.Equal(t, IntentMyStatus, res.Intent)
	assert.Contains(t, res.Reply, "H76DJH0")
	assert.Contains(t, res.Reply, "7.80")
	assert.Contains(t, res.Reply, models.SituationApproved)
	assert.Equal(t, "", students.lastRA)
	assert.Equal(t, []string{IntentMyStatus}, observer.seen)
}

func TestAskFallbackOnNoMatch(t *testing.T) {
	svc := NewChatbotService(&mockStudentStatus{}, &mockQuickQueries{}, nil, nil, nil)

	res, err := svc.Ask(context.Background(), studentSession(), models.AskRequest{Message: "xyzzy"})
	require.NoError(t, err)

	assert.Empty(t, res.Intent)
	assert.Equal(t, chatbotFallback, res.Reply)
}

func TestAskValidatesPayload(t *testing.T) {
	svc := NewChatbotService(&mockStudentStatus{}, &mockQuickQueries{}, nil, nil, nil)

	_, err := svc.Ask(context.Background(), studentSession(), models.AskRequest{})
	assert.Error(t, err)
}

func TestAskFAQIntents(t *testing.T) {
	svc := NewChatbotService(&mockStudentStatus{}, &mockQuickQueries{}, nil, nil, nil)
	ctx := context.Background()

	cases := map[string]string{
		"como faço a prova substitutiva?": IntentSubstituteExam,
		"perdi minha carteirinha":         IntentCardCopy,
		"quero trancamento da matrícula":  IntentWithdrawal,
		"solicito revisão de nota":        IntentGradeReview,
	}
	for message, intent := range cases {
		res, err := svc.Ask(ctx, studentSession(), models.AskRequest{Message: message})
		require.NoError(t, err)
		assert.Equal(t, intent, res.Intent, "message %q", message)
		assert.NotEqual(t, chatbotFallback, res.Reply)
	}
}

// Denied and missing records collapse into the same reply so the bot
// cannot be used to probe for RAs.
func TestAskStudentStatusDeniedAndMissingLookAlike(t *testing.T) {
	denied := &mockStudentStatus{err: appErrors.Clone(appErrors.ErrDenied, "")}
	missing := &mockStudentStatus{err: appErrors.Clone(appErrors.ErrNotFound, "")}

	deniedSvc := NewChatbotService(denied, &mockQuickQueries{}, nil, nil, nil)
	missingSvc := NewChatbotService(missing, &mockQuickQueries{}, nil, nil, nil)
	ctx := context.Background()

	resDenied, err := deniedSvc.Ask(ctx, professorSession(), models.AskRequest{Message: "status do aluno R1"})
	require.NoError(t, err)
	resMissing, err := missingSvc.Ask(ctx, professorSession(), models.AskRequest{Message: "status do aluno R2"})
	require.NoError(t, err)

	assert.Equal(t, resDenied.Reply, resMissing.Reply)
}

func TestAskStudentStatusExtractsRA(t *testing.T) {
	students := &mockStudentStatus{status: &models.StudentStatus{
		RA: "R1", Name: "x", Course: "y",
		GradeView: models.GradeView{Situation: models.SituationNoGrades},
	}}
	svc := NewChatbotService(students, &mockQuickQueries{}, nil, nil, nil)

	res, err := svc.Ask(context.Background(), professorSession(), models.AskRequest{Message: "status do aluno r1"})
	require.NoError(t, err)

	assert.Equal(t, IntentStudentStatus, res.Intent)
	assert.Equal(t, "R1", students.lastRA)
	assert.Contains(t, res.Reply, models.SituationNoGrades)
}

func TestAskDeliveryPendencies(t *testing.T) {
	queries := &mockQuickQueries{delivery: []ActivityPendency{
		{ActivityID: "a1", Title: "Trabalho 1", Students: []string{"R1", "R2"}},
		{ActivityID: "a2", Title: "Trabalho 2", Students: []string{}},
	}}
	svc := NewChatbotService(&mockStudentStatus{}, queries, nil, nil, nil)

	res, err := svc.Ask(context.Background(), professorSession(), models.AskRequest{Message: "pendências de entrega da turma TADS01"})
	require.NoError(t, err)

	assert.Equal(t, IntentDeliveryPend, res.Intent)
	assert.Contains(t, res.Reply, "Trabalho 1")
	assert.Contains(t, res.Reply, "R1, R2")
	assert.NotContains(t, res.Reply, "Trabalho 2")
}

func TestAskClassActivitiesEmpty(t *testing.T) {
	svc := NewChatbotService(&mockStudentStatus{}, &mockQuickQueries{}, nil, nil, nil)

	res, err := svc.Ask(context.Background(), professorSession(), models.AskRequest{Message: "atividades da turma TADS01"})
	require.NoError(t, err)

	assert.Equal(t, IntentClassActivity, res.Intent)
	assert.Contains(t, res.Reply, "TADS01")
	assert.Contains(t, res.Reply, "não tem atividades")
}
