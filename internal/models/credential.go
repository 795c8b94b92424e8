package models

import (
	"time"

	"github.com/pimacad/academico-api/internal/authz"
)

// Credential is a login identity stored in the credentials collection.
// The password hash never leaves the persistence layer.
type Credential struct {
	Username     string     `json:"username"`
	PasswordHash string     `json:"password_hash"`
	Role         authz.Role `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
