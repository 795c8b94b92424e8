// Package store implements the durable key-value table backing all
// persisted entities. State lives in a single JSON file; every mutation
// rewrites the file through a temp-file-and-rename cycle so a crash never
// leaves a half-written image on disk. A single in-process lock serializes
// writers; concurrent writers in other processes are not supported.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

// Store is a durable key-value table over one structured file.
type Store struct {
	path   string
	logger *zap.Logger

	mu  sync.RWMutex
	doc Document
}

// Open loads the data file at path, creating an empty store when the file
// does not exist yet. A file that exists but cannot be parsed is a fatal
// condition: the store refuses to start rather than reset to empty.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{path: path, logger: logger, doc: Document{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("data file absent, starting empty", zap.String("path", path))
		return s, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCorruptState.Code, appErrors.ErrCorruptState.Status,
			fmt.Sprintf("cannot read data file %s", path))
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCorruptState.Code, appErrors.ErrCorruptState.Status,
			fmt.Sprintf("data file %s is not a valid collection document", path))
	}
	if doc == nil {
		doc = Document{}
	}

	s.doc = doc
	logger.Info("data file loaded", zap.String("path", path), zap.Int("collections", len(doc)))
	return s, nil
}

// Get unmarshals the record stored under collection/key into out.
func (s *Store) Get(collection, key string, out interface{}) error {
	s.mu.RLock()
	raw, ok := s.doc[collection][key]
	s.mu.RUnlock()

	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("decode record %s/%s", collection, key))
	}
	return nil
}

// Put stores the record under collection/key, replacing any previous
// value, and persists the full document before the call returns.
func (s *Store) Put(collection, key string, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("encode record %s/%s", collection, key))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.withRecord(collection, key, raw)
	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Delete removes the record under collection/key.
func (s *Store) Delete(collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doc[collection][key]; !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "")
	}

	next := s.doc.withoutRecord(collection, key)
	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Scan calls fn for every record in the collection, in key order. The
// iteration sees the document current at the time of the call; invoking
// Scan again re-reads the then-current state. Returning a non-nil error
// from fn stops the scan and propagates the error.
func (s *Store) Scan(collection string, fn func(key string, raw json.RawMessage) error) error {
	s.mu.RLock()
	records := s.doc[collection]
	s.mu.RUnlock()

	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := fn(k, records[k]); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc[collection])
}

// Snapshot returns the current document. Callers must treat it as
// read-only; the store never mutates a published document in place.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// flush writes the document to a temp file in the data directory and
// renames it over the data file. The rename is atomic on POSIX systems,
// so the on-disk file is always either the previous or the new complete
// image. Callers hold the write lock.
func (s *Store) flush(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "encode document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "prepare data directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "create temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "close temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return appErrors.Wrap(err, appErrors.ErrWriteFailure.Code, appErrors.ErrWriteFailure.Status, "replace data file")
	}
	return nil
}
