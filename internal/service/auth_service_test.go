package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type mockCredentialRepo struct {
	creds   map[string]*models.Credential
	findErr error
}

func (m *mockCredentialRepo) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	cred, ok := m.creds[username]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return cred, nil
}

type mockAuditRepo struct {
	entries   []models.AuditEntry
	appendErr error
}

func (m *mockAuditRepo) Append(ctx context.Context, actor, action, resource, recordID string) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, models.AuditEntry{Actor: actor, Action: action, Resource: resource, RecordID: recordID})
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockAuditRepo) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("senha123"), bcrypt.MinCost)
	require.NoError(t, err)

	creds := &mockCredentialRepo{creds: map[string]*models.Credential{
		"aluno": {Username: "aluno", PasswordHash: string(hash), Role: authz.RoleStudent},
	}}
	audit := &mockAuditRepo{}
	svc := NewAuthService(creds, audit, nil, nil, AuthConfig{SessionTTL: time.Hour})
	return svc, audit
}

func TestLoginIssuesSession(t *testing.T) {
	svc, audit := newAuthFixture(t)

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "aluno", res.Username)
	assert.Equal(t, authz.RoleStudent, res.Role)
	assert.True(t, res.ExpiresAt.After(time.Now()))

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	session, err := svc.Validate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, "aluno", session.Username)
}

func TestLoginTokensAreUnique(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
}

// Wrong password and unknown username must be indistinguishable.
func TestLoginFailuresShareOneError(t *testing.T) {
	svc, audit := newAuthFixture(t)
	ctx := context.Background()

	_, errWrongPass := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "errada"})
	_, errNoUser := svc.Login(ctx, models.LoginRequest{Username: "ghost", Password: "errada"})

	assert.True(t, errors.Is(errWrongPass, appErrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(errNoUser, appErrors.ErrInvalidCredentials))
	assert.Equal(t, appErrors.FromError(errWrongPass).Message, appErrors.FromError(errNoUser).Message)
	assert.Empty(t, audit.entries)
}

func TestLoginValidatesPayload(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "aluno"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Validate(context.Background(), "nope")
	assert.True(t, errors.Is(err, appErrors.ErrUnknownSession))
}

// An expired session is evicted on validation: the first call reports
// expiry, subsequent calls report an unknown token.
func TestValidateEvictsExpiredSession(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }

	_, err = svc.Validate(ctx, res.Token)
	assert.True(t, errors.Is(err, appErrors.ErrSessionExpired))

	_, err = svc.Validate(ctx, res.Token)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownSession))
}

func TestLogoutDiscardsSession(t *testing.T) {
	svc, audit := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, res.Token))

	_, err = svc.Validate(ctx, res.Token)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownSession))

	require.Len(t, audit.entries, 2)
	assert.Equal(t, models.AuditActionLogout, audit.entries[1].Action)
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	svc, audit := newAuthFixture(t)

	require.NoError(t, svc.Logout(context.Background(), "nope"))
	assert.Empty(t, audit.entries)
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	base := time.Now().UTC()
	svc.now = func() time.Time { return base }
	old, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(30 * time.Minute) }
	fresh, err := svc.Login(ctx, models.LoginRequest{Username: "aluno", Password: "senha123"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(90 * time.Minute) }
	removed := svc.Sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, svc.ActiveSessions())

	_, err = svc.Validate(ctx, old.Token)
	assert.True(t, errors.Is(err, appErrors.ErrUnknownSession))
	_, err = svc.Validate(ctx, fresh.Token)
	assert.NoError(t, err)
}
