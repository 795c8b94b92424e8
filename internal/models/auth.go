package models

import (
	"time"

	"github.com/pimacad/academico-api/internal/authz"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued session token and identity.
type LoginResponse struct {
	Token     string     `json:"token"`
	Username  string     `json:"username"`
	Role      authz.Role `json:"role"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// MeResponse describes the authenticated caller.
type MeResponse struct {
	Username string     `json:"username"`
	Role     authz.Role `json:"role"`
}

// AskRequest is one chatbot turn.
type AskRequest struct {
	Message string `json:"pergunta" validate:"required"`
}

// AskResponse carries the chatbot reply and the matched intent, when any.
type AskResponse struct {
	Reply  string `json:"resposta"`
	Intent string `json:"intent,omitempty"`
}
