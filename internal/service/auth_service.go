package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type authCredentialRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.Credential, error)
}

type authAuditRepository interface {
	Append(ctx context.Context, actor, action, resource, recordID string) error
}

// AuthConfig defines configuration for the session authenticator.
type AuthConfig struct {
	SessionTTL time.Duration
}

// AuthService authenticates credentials and owns the in-memory session
// table. Tokens are opaque random strings; nothing about a session is
// persisted, so a process restart invalidates every session at once.
type AuthService struct {
	creds     authCredentialRepository
	audit     authAuditRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(creds authCredentialRepository, audit authAuditRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 8 * time.Hour
	}
	return &AuthService{
		creds:     creds,
		audit:     audit,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
		sessions:  map[string]*models.Session{},
	}
}

// Login verifies the credentials and issues a session token. Unknown
// usernames and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	cred, err := s.creds.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch credential")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session token")
	}

	now := s.now()
	session := &models.Session{
		Token:     token,
		Username:  cred.Username,
		Role:      cred.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.config.SessionTTL),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	if err := s.audit.Append(ctx, cred.Username, models.AuditActionLogin, "session", cred.Username); err != nil {
		s.logger.Warn("failed to append login audit entry", zap.String("username", cred.Username), zap.Error(err))
	}

	return &models.LoginResponse{
		Token:     token,
		Username:  session.Username,
		Role:      session.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Validate resolves a token into its session. Expired sessions are
// evicted on sight and reported distinctly from unknown tokens.
func (s *AuthService) Validate(ctx context.Context, token string) (*models.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnknownSession, "")
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrSessionExpired, "")
	}
	return session, nil
}

// Logout discards the session. Unknown tokens are not an error: the
// caller's goal state (no such session) already holds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	s.mu.Lock()
	session, ok := s.sessions[token]
	if ok {
		delete(s.sessions, token)
	}
	s.mu.Unlock()

	if ok {
		if err := s.audit.Append(ctx, session.Username, models.AuditActionLogout, "session", session.Username); err != nil {
			s.logger.Warn("failed to append logout audit entry", zap.String("username", session.Username), zap.Error(err))
		}
	}
	return nil
}

// Sweep evicts every expired session and returns how many were removed.
func (s *AuthService) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// ActiveSessions returns the current session count, expired ones included
// until the next sweep or validation touches them.
func (s *AuthService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper runs periodic eviction until the context is cancelled.
func (s *AuthService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := s.Sweep(); removed > 0 {
					s.logger.Debug("evicted expired sessions", zap.Int("count", removed))
				}
			}
		}
	}()
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
