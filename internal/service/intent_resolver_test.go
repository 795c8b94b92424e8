package service

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pimacad/academico-api/internal/authz"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

func TestResolveFirstMatchWins(t *testing.T) {
	rules := []IntentRule{
		{Name: "saldo", Pattern: regexp.MustCompile(`sal`)},
		{Name: "salario", Pattern: regexp.MustCompile(`salario`)},
	}
	r := NewIntentResolver(rules, nil)

	match, err := r.Resolve(authz.RoleStudent, "qual meu salario?")
	require.NoError(t, err)
	assert.Equal(t, "saldo", match.Rule.Name)
}

func TestResolveOrderIsDeclarationOrder(t *testing.T) {
	rules := []IntentRule{
		{Name: "especifica", Pattern: regexp.MustCompile(`pend[eê]ncias de entrega`)},
		{Name: "generica", Pattern: regexp.MustCompile(`pend`)},
	}
	r := NewIntentResolver(rules, nil)

	match, err := r.Resolve(authz.RoleProfessor, "pendências de entrega")
	require.NoError(t, err)
	assert.Equal(t, "especifica", match.Rule.Name)

	match, err = r.Resolve(authz.RoleProfessor, "pendente")
	require.NoError(t, err)
	assert.Equal(t, "generica", match.Rule.Name)
}

// Rules scoped to another role are invisible: the message skips them and
// can still land on a later rule.
func TestResolveRoleScopedRuleInvisible(t *testing.T) {
	rules := []IntentRule{
		{Name: "docente", Pattern: regexp.MustCompile(`notas`), Roles: []authz.Role{authz.RoleProfessor}},
		{Name: "aberta", Pattern: regexp.MustCompile(`notas`)},
	}
	r := NewIntentResolver(rules, nil)

	match, err := r.Resolve(authz.RoleStudent, "minhas notas")
	require.NoError(t, err)
	assert.Equal(t, "aberta", match.Rule.Name)

	match, err = r.Resolve(authz.RoleProfessor, "minhas notas")
	require.NoError(t, err)
	assert.Equal(t, "docente", match.Rule.Name)
}

func TestResolveRoleScopedRuleAloneIsNoMatch(t *testing.T) {
	rules := []IntentRule{
		{Name: "docente", Pattern: regexp.MustCompile(`notas`), Roles: []authz.Role{authz.RoleProfessor}},
	}
	r := NewIntentResolver(rules, nil)

	_, err := r.Resolve(authz.RoleStudent, "minhas notas")
	assert.True(t, errors.Is(err, appErrors.ErrNoMatch))
}

// A matched pattern whose extraction rejects falls through to later
// rules instead of failing resolution.
func TestResolveExtractionFailureFallsThrough(t *testing.T) {
	rules := []IntentRule{
		{
			Name:    "com_turma",
			Pattern: regexp.MustCompile(`atividades\s*(\S*)`),
			Extract: func(groups []string) (map[string]string, bool) {
				if groups[1] == "" {
					return nil, false
				}
				return map[string]string{"turma": groups[1]}, true
			},
		},
		{Name: "ajuda", Pattern: regexp.MustCompile(`atividades`)},
	}
	r := NewIntentResolver(rules, nil)

	match, err := r.Resolve(authz.RoleProfessor, "atividades")
	require.NoError(t, err)
	assert.Equal(t, "ajuda", match.Rule.Name)

	match, err = r.Resolve(authz.RoleProfessor, "atividades t1")
	require.NoError(t, err)
	assert.Equal(t, "com_turma", match.Rule.Name)
	assert.Equal(t, "t1", match.Args["turma"])
}

func TestResolveNormalizesCase(t *testing.T) {
	rules := []IntentRule{{Name: "x", Pattern: regexp.MustCompile(`trancament`)}}
	r := NewIntentResolver(rules, nil)

	match, err := r.Resolve(authz.RoleStudent, "  TRANCAMENTO de matrícula ")
	require.NoError(t, err)
	assert.Equal(t, "x", match.Rule.Name)
}

func TestResolveEmptyMessageIsNoMatch(t *testing.T) {
	r := NewIntentResolver(DefaultIntentRules(), nil)

	_, err := r.Resolve(authz.RoleStudent, "   ")
	assert.True(t, errors.Is(err, appErrors.ErrNoMatch))
}

func TestDefaultRulesProfessorQueriesBeforeFAQ(t *testing.T) {
	r := NewIntentResolver(DefaultIntentRules(), nil)

	match, err := r.Resolve(authz.RoleProfessor, "pendências de entrega da turma TADS01")
	require.NoError(t, err)
	assert.Equal(t, IntentDeliveryPend, match.Rule.Name)
	assert.Equal(t, "TADS01", match.Args["turma"])

	// the same message from a student cannot reach the professor rule
	_, err = r.Resolve(authz.RoleStudent, "pendências de entrega da turma TADS01")
	assert.True(t, errors.Is(err, appErrors.ErrNoMatch))
}
