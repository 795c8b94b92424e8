package models

import "time"

// Class groups students under a unique code (e.g. TADS01).
type Class struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Students  []string  `json:"students"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasStudent reports whether the RA is enrolled in the class.
func (c *Class) HasStudent(ra string) bool {
	for _, s := range c.Students {
		if s == ra {
			return true
		}
	}
	return false
}
