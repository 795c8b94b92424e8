package models

import (
	"math"
	"time"
)

// Grade consolidation outcomes.
const (
	SituationApproved = "Aprovado"
	SituationFailed   = "Reprovado"
	SituationNoGrades = "Sem notas"
)

// PassingAverage is the minimum weighted average for approval.
const PassingAverage = 7.0

// Student is an academic record keyed by RA (registro acadêmico). Grade
// fields stay nil until a professor posts them. Records are never hard
// deleted; Archived preserves referential history.
type Student struct {
	RA            string     `json:"ra"`
	Name          string     `json:"name"`
	Course        string     `json:"course"`
	OwnerUsername string     `json:"owner_username"`
	NP1           *float64   `json:"np1,omitempty"`
	NP2           *float64   `json:"np2,omitempty"`
	PIM           *float64   `json:"pim,omitempty"`
	Archived      bool       `json:"archived"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// GradeView is the consolidated grade summary for a student.
type GradeView struct {
	NP1       *float64 `json:"np1"`
	NP2       *float64 `json:"np2"`
	PIM       *float64 `json:"pim"`
	Media     *float64 `json:"media"`
	Situation string   `json:"situacao"`
}

// Grades computes the weighted average (NP1 and NP2 weigh 4, PIM weighs 2)
// and the resulting situation. The average stays nil until all three
// grades exist.
func (s *Student) Grades() GradeView {
	view := GradeView{NP1: s.NP1, NP2: s.NP2, PIM: s.PIM, Situation: SituationNoGrades}
	if s.NP1 == nil || s.NP2 == nil || s.PIM == nil {
		return view
	}

	media := math.Round((*s.NP1*4+*s.NP2*4+*s.PIM*2)/10*100) / 100
	view.Media = &media
	if media >= PassingAverage {
		view.Situation = SituationApproved
	} else {
		view.Situation = SituationFailed
	}
	return view
}

// StudentStatus is the portal view combining identity, class and grades.
type StudentStatus struct {
	RA     string  `json:"ra"`
	Name   string  `json:"name"`
	Course string  `json:"course"`
	Class  *string `json:"turma,omitempty"`
	GradeView
}
