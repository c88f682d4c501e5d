package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.DocumentWatcher = (*Watcher)(nil)

// ErrWatcherClosed is returned by Watch after Close.
var ErrWatcherClosed = errors.New("watcher closed")

// Watcher reports changes to supported files in a documents directory
// using fsnotify. Only the directory itself is watched.
type Watcher struct {
	mu       sync.Mutex
	closed   bool
	watchers []*fsnotify.Watcher
}

// NewWatcher creates a filesystem watcher.
func NewWatcher() *Watcher {
	return &Watcher{}
}

// Watch starts watching dir. The returned channel closes when ctx is
// cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan domain.DocumentChange, error) {
	dir = LocalPath(dir)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, ErrWatcherClosed
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	w.watchers = append(w.watchers, fsw)

	changes := make(chan domain.DocumentChange)
	go w.run(ctx, fsw, changes)

	return changes, nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- domain.DocumentChange) {
	defer close(changes)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			change, ok := handleEvent(event)
			if !ok {
				continue
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// Close stops every watch started by this watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, fsw := range w.watchers {
		errs = append(errs, fsw.Close())
	}
	w.watchers = nil
	return errors.Join(errs...)
}

// handleEvent maps an fsnotify event to a change. Directories, hidden
// files, unsupported extensions and chmod-only events are dropped.
func handleEvent(event fsnotify.Event) (domain.DocumentChange, bool) {
	if !Supported(event.Name) {
		return domain.DocumentChange{}, false
	}

	change := domain.DocumentChange{Path: event.Name}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		change.Type = domain.ChangeDeleted
		return change, true
	case event.Has(fsnotify.Create):
		change.Type = domain.ChangeCreated
	case event.Has(fsnotify.Write):
		change.Type = domain.ChangeUpdated
	default:
		return domain.DocumentChange{}, false
	}

	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return domain.DocumentChange{}, false
	}
	return change, true
}
