package models

import "time"

// Audit actions recorded in the append-only audit log.
const (
	AuditActionLogin   = "login"
	AuditActionLogout  = "logout"
	AuditActionCreate  = "create"
	AuditActionWrite   = "write"
	AuditActionArchive = "archive"
)

// AuditEntry is an immutable trace of a mutating operation. Entries are
// appended to the audit_log collection in the same store as the data.
type AuditEntry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	RecordID  string    `json:"record_id"`
	CreatedAt time.Time `json:"created_at"`
}
