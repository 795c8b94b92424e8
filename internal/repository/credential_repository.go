package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/store"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

// CredentialRepository manages login identities. Credentials are
// provisioned administratively and never deleted in normal operation.
type CredentialRepository struct {
	store *store.Store
}

// NewCredentialRepository constructs a CredentialRepository.
func NewCredentialRepository(s *store.Store) *CredentialRepository {
	return &CredentialRepository{store: s}
}

// FindByUsername fetches a credential by its unique username.
func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var cred models.Credential
	if err := r.store.Get(store.CollectionCredentials, username, &cred); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Create provisions a new credential. Usernames are globally unique.
func (r *CredentialRepository) Create(ctx context.Context, cred *models.Credential) error {
	var existing models.Credential
	err := r.store.Get(store.CollectionCredentials, cred.Username, &existing)
	if err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "username already registered")
	}
	if !errors.Is(err, appErrors.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	cred.CreatedAt = now
	cred.UpdatedAt = now
	return r.store.Put(store.CollectionCredentials, cred.Username, cred)
}

// RotatePasswordHash replaces the stored hash for the username.
func (r *CredentialRepository) RotatePasswordHash(ctx context.Context, username, passwordHash string) error {
	cred, err := r.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	cred.PasswordHash = passwordHash
	cred.UpdatedAt = time.Now().UTC()
	return r.store.Put(store.CollectionCredentials, username, cred)
}

// Count returns the number of provisioned credentials.
func (r *CredentialRepository) Count(ctx context.Context) int {
	return r.store.Count(store.CollectionCredentials)
}
