package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

type testRecord struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func tempStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "db.json")
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count(CollectionStudents))
}

func TestOpenCorruptFileFails(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Open(path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCorruptState))
}

func TestOpenTruncatedFileFails(t *testing.T) {
	path := tempStorePath(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"students": {"A1": {"name"`), 0o644))

	_, err := Open(path, nil)
	assert.True(t, errors.Is(err, appErrors.ErrCorruptState))
}

func TestPutGetRoundTrip(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)

	require.NoError(t, s.Put(CollectionStudents, "A1", testRecord{Name: "ana", Value: 7}))

	var got testRecord
	require.NoError(t, s.Get(CollectionStudents, "A1", &got))
	assert.Equal(t, testRecord{Name: "ana", Value: 7}, got)
}

func TestGetMissingIsNotFound(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)

	var got testRecord
	err = s.Get(CollectionStudents, "nope", &got)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestPutSurvivesReopen(t *testing.T) {
	path := tempStorePath(t)

	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(CollectionClasses, "T1", testRecord{Name: "turma"}))

	reopened, err := Open(path, nil)
	require.NoError(t, err)

	var got testRecord
	require.NoError(t, reopened.Get(CollectionClasses, "T1", &got))
	assert.Equal(t, "turma", got.Name)
}

func TestDelete(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)

	require.NoError(t, s.Put(CollectionStudents, "A1", testRecord{}))
	require.NoError(t, s.Delete(CollectionStudents, "A1"))

	var got testRecord
	assert.True(t, errors.Is(s.Get(CollectionStudents, "A1", &got), appErrors.ErrNotFound))
	assert.True(t, errors.Is(s.Delete(CollectionStudents, "A1"), appErrors.ErrNotFound))
}

func TestScanVisitsKeysInOrder(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)

	for _, key := range []string{"c", "a", "b"} {
		require.NoError(t, s.Put(CollectionStudents, key, testRecord{Name: key}))
	}

	var seen []string
	require.NoError(t, s.Scan(CollectionStudents, func(key string, _ json.RawMessage) error {
		seen = append(seen, key)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)
}

func TestFlushFailureKeepsPreviousState(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(CollectionStudents, "A1", testRecord{Name: "before"}))

	err = s.Put(CollectionStudents, "A2", func() {})
	require.Error(t, err)

	var got testRecord
	require.NoError(t, s.Get(CollectionStudents, "A1", &got))
	assert.Equal(t, "before", got.Name)
	assert.Equal(t, 1, s.Count(CollectionStudents))
}

// Concurrent writers must serialize: after the dust settles the on-disk
// file is one complete image holding every write, never an interleaved
// hybrid.
func TestConcurrentWritesLinearize(t *testing.T) {
	path := tempStorePath(t)
	s, err := Open(path, nil)
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("k%02d", n)
			assert.NoError(t, s.Put(CollectionStudents, key, testRecord{Value: n}))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, writers, s.Count(CollectionStudents))

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	assert.Equal(t, writers, reopened.Count(CollectionStudents))
	for i := 0; i < writers; i++ {
		var got testRecord
		require.NoError(t, reopened.Get(CollectionStudents, fmt.Sprintf("k%02d", i), &got))
		assert.Equal(t, i, got.Value)
	}
}

func TestScanSnapshotUnaffectedByConcurrentPut(t *testing.T) {
	s, err := Open(tempStorePath(t), nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(CollectionStudents, "a", testRecord{}))
	require.NoError(t, s.Put(CollectionStudents, "b", testRecord{}))

	count := 0
	require.NoError(t, s.Scan(CollectionStudents, func(key string, _ json.RawMessage) error {
		count++
		if key == "a" {
			require.NoError(t, s.Put(CollectionStudents, "z", testRecord{}))
		}
		return nil
	}))
	assert.Equal(t, 2, count)
}
