package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestGradesWithoutAllComponents(t *testing.T) {
	cases := []Student{
		{},
		{NP1: f(8)},
		{NP1: f(8), NP2: f(9)},
		{NP2: f(9), PIM: f(10)},
	}
	for _, s := range cases {
		view := s.Grades()
		assert.Nil(t, view.Media)
		assert.Equal(t, SituationNoGrades, view.Situation)
	}
}

func TestGradesWeightedAverage(t *testing.T) {
	s := Student{NP1: f(8), NP2: f(6), PIM: f(7)}
	view := s.Grades()

	require.NotNil(t, view.Media)
	// (8*4 + 6*4 + 7*2) / 10 = 7.0
	assert.InDelta(t, 7.0, *view.Media, 1e-9)
	assert.Equal(t, SituationApproved, view.Situation)
}

func TestGradesRoundsToTwoDecimals(t *testing.T) {
	s := Student{NP1: f(7.33), NP2: f(6.67), PIM: f(5.55)}
	view := s.Grades()

	require.NotNil(t, view.Media)
	assert.InDelta(t, 6.71, *view.Media, 1e-9)
}

func TestGradesFailingBelowThreshold(t *testing.T) {
	s := Student{NP1: f(6.9), NP2: f(6.9), PIM: f(6.9)}
	view := s.Grades()

	require.NotNil(t, view.Media)
	assert.Equal(t, SituationFailed, view.Situation)
}

func TestGradesExactThresholdApproves(t *testing.T) {
	s := Student{NP1: f(7), NP2: f(7), PIM: f(7)}
	view := s.Grades()

	require.NotNil(t, view.Media)
	assert.InDelta(t, PassingAverage, *view.Media, 1e-9)
	assert.Equal(t, SituationApproved, view.Situation)
}
