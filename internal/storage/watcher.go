package storage

import (
	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/go-cost-tracker/internal/util"
)

// KeyEvent reports an external change to one persisted key.
type KeyEvent struct {
	Key       string
	Operation string
}

// Watcher observes a FileStore's directory and reports writes made by other
// processes, so a long-lived host can reload externally edited state.
type Watcher struct {
	watcher *fsnotify.Watcher
	events  chan KeyEvent
	done    chan struct{}
}

// NewWatcher starts watching the store's base directory.
func NewWatcher(store *FileStore) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(store.BaseDir()); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		events:  make(chan KeyEvent, 100),
		done:    make(chan struct{}),
	}
	go w.processEvents()
	return w, nil
}

// Events returns the channel of key change notifications.
func (w *Watcher) Events() <-chan KeyEvent {
	return w.events
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Writes land via temp file + rename, so Create covers them.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove) == 0 {
				continue
			}
			key, ok := KeyForFile(event.Name)
			if !ok {
				continue
			}
			select {
			case w.events <- KeyEvent{Key: key, Operation: event.Op.String()}:
			default:
				util.LogWarnf("Storage watcher event buffer full, dropping event for %s", key)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarnf("Storage watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases its resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
