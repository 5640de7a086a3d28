package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tracker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)

	in := payload{Name: "anthropic", Count: 7, Cost: 99.99}
	require.NoError(t, s.Set(KeySources, in))

	var out payload
	found, err := s.Get(KeySources, &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, in, out)
}

func TestSQLiteStoreMissingKey(t *testing.T) {
	s := newTestSQLiteStore(t)

	var out payload
	found, err := s.Get("cost-tracker:nothing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteStoreUpsert(t *testing.T) {
	s := newTestSQLiteStore(t)

	require.NoError(t, s.Set(KeyLastSync, "first"))
	require.NoError(t, s.Set(KeyLastSync, "second"))

	var stamp string
	found, err := s.Get(KeyLastSync, &stamp)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "second", stamp)
}

func TestSQLiteStoreRemove(t *testing.T) {
	s := newTestSQLiteStore(t)

	require.NoError(t, s.Set(KeyUsage, []int{1, 2, 3}))
	require.NoError(t, s.Remove(KeyUsage))

	var out []int
	found, err := s.Get(KeyUsage, &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, s.Remove(KeyUsage))
}
