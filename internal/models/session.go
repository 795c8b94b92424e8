package models

import (
	"time"

	"github.com/pimacad/academico-api/internal/authz"
)

// Session is an authenticated identity held only in memory. Role is a
// snapshot taken at issuance; later credential changes do not affect
// sessions already issued.
type Session struct {
	Token     string     `json:"-"`
	Username  string     `json:"username"`
	Role      authz.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given
// instant.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Actor converts the session into the identity used by repositories.
func (s *Session) Actor() authz.Actor {
	return authz.Actor{Username: s.Username, Role: s.Role}
}
