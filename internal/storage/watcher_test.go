package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsKeyChange(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(store)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, store.Set(KeySources, payload{Name: "external edit", Count: 1}))

	select {
	case event := <-watcher.Events():
		assert.Equal(t, KeySources, event.Key)
	case <-time.After(3 * time.Second):
		t.Fatal("no watcher event after Set")
	}
}

func TestWatcherIgnoresForeignFiles(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	watcher, err := NewWatcher(store)
	require.NoError(t, err)
	defer watcher.Close()

	// A non-key file produces no event; the key write after it must be the
	// first event observed.
	require.NoError(t, os.WriteFile(filepath.Join(store.BaseDir(), "scratch.txt"), []byte("x"), 0644))
	require.NoError(t, store.Set(KeyLastSync, "2025-06-01T00:00:00Z"))

	deadline := time.After(3 * time.Second)
	for {
		select {
		case event := <-watcher.Events():
			if event.Key == KeyLastSync {
				return
			}
			t.Fatalf("unexpected event for key %q", event.Key)
		case <-deadline:
			t.Fatal("no watcher event after Set")
		}
	}
}
