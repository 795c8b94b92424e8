package repository

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pimacad/academico-api/internal/models"
	"github.com/pimacad/academico-api/internal/store"
)

// AuditRepository appends immutable trace entries to the audit_log
// collection. Entries are never updated or deleted.
type AuditRepository struct {
	store *store.Store
}

// NewAuditRepository constructs an AuditRepository.
func NewAuditRepository(s *store.Store) *AuditRepository {
	return &AuditRepository{store: s}
}

// Append records one audit entry. The entry id doubles as the collection
// key; a uuid keeps appends collision-free.
func (r *AuditRepository) Append(ctx context.Context, actor, action, resource, recordID string) error {
	entry := models.AuditEntry{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Resource:  resource,
		RecordID:  recordID,
		CreatedAt: time.Now().UTC(),
	}
	return r.store.Put(store.CollectionAuditLog, entry.ID, entry)
}

// List returns every audit entry ordered by creation time.
func (r *AuditRepository) List(ctx context.Context) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.store.Scan(store.CollectionAuditLog, func(_ string, raw json.RawMessage) error {
		var entry models.AuditEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return err
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
