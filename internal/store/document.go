package store

import "encoding/json"

// Collection names persisted in the data file. The file layout is a JSON
// object with one entry per collection, each mapping primary key to record.
const (
	CollectionCredentials = "credentials"
	CollectionStudents    = "students"
	CollectionClasses     = "classes"
	CollectionActivities  = "activities"
	CollectionAuditLog    = "audit_log"
)

// Document is the complete on-disk image. Documents held by the store are
// treated as immutable: mutations build a new Document sharing untouched
// collections, so readers can iterate a snapshot without copying.
type Document map[string]map[string]json.RawMessage

// withRecord returns a new Document with the record set under
// collection/key. The touched collection is cloned; others are shared.
func (d Document) withRecord(collection, key string, raw json.RawMessage) Document {
	next := make(Document, len(d)+1)
	for name, records := range d {
		next[name] = records
	}
	clone := make(map[string]json.RawMessage, len(d[collection])+1)
	for k, v := range d[collection] {
		clone[k] = v
	}
	clone[key] = raw
	next[collection] = clone
	return next
}

// withoutRecord returns a new Document with the record removed.
func (d Document) withoutRecord(collection, key string) Document {
	next := make(Document, len(d))
	for name, records := range d {
		next[name] = records
	}
	clone := make(map[string]json.RawMessage, len(d[collection]))
	for k, v := range d[collection] {
		if k != key {
			clone[k] = v
		}
	}
	next[collection] = clone
	return next
}
