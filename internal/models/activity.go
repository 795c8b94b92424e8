package models

import "time"

// Delivery is one student's submission for an activity. Grade stays nil
// until the professor marks it.
type Delivery struct {
	File  string   `json:"file"`
	Grade *float64 `json:"grade,omitempty"`
}

// Activity is an assignment bound to a class. Deliveries map RA to the
// student's submission.
type Activity struct {
	ID         string              `json:"id"`
	ClassCode  string              `json:"class_code"`
	Title      string              `json:"title"`
	DueDate    string              `json:"due_date"`
	Deliveries map[string]Delivery `json:"deliveries"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
