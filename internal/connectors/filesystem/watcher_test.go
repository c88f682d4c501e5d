package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// nextChange waits for the first change on path, skipping others.
func nextChange(t *testing.T, changes <-chan domain.DocumentChange, path string) domain.DocumentChange {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case change, ok := <-changes:
			require.True(t, ok, "channel closed before change on %s", path)
			if change.Path == path {
				return change
			}
		case <-timeout:
			t.Fatalf("timeout waiting for change on %s", path)
		}
	}
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		dir := t.TempDir()
		watcher := NewWatcher()
		defer watcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := watcher.Watch(ctx, dir)
		require.NoError(t, err)

		path := filepath.Join(dir, "new-file.md")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

		change := nextChange(t, changes, path)
		assert.Contains(t, []domain.ChangeType{domain.ChangeCreated, domain.ChangeUpdated}, change.Type)
	})

	t.Run("reports deleted files", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "to-delete.txt", "delete me")

		watcher := NewWatcher()
		defer watcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := watcher.Watch(ctx, dir)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		change := nextChange(t, changes, path)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
	})

	t.Run("missing directory", func(t *testing.T) {
		changes, err := NewWatcher().Watch(context.Background(), "/non/existent/path")

		assert.Error(t, err)
		assert.Nil(t, changes)
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		watcher := NewWatcher()
		defer watcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		changes, err := watcher.Watch(ctx, t.TempDir())
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changes:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when closed", func(t *testing.T) {
		watcher := NewWatcher()
		require.NoError(t, watcher.Close())

		changes, err := watcher.Watch(context.Background(), t.TempDir())

		assert.ErrorIs(t, err, ErrWatcherClosed)
		assert.Nil(t, changes)
	})
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name         string
		file         string
		makeDir      bool
		exists       bool
		op           fsnotify.Op
		wantChange   bool
		expectedType domain.ChangeType
	}{
		{name: "create", file: "a.md", exists: true, op: fsnotify.Create, wantChange: true, expectedType: domain.ChangeCreated},
		{name: "write", file: "a.md", exists: true, op: fsnotify.Write, wantChange: true, expectedType: domain.ChangeUpdated},
		{name: "write with chmod", file: "a.md", exists: true, op: fsnotify.Write | fsnotify.Chmod, wantChange: true, expectedType: domain.ChangeUpdated},
		{name: "remove", file: "a.md", op: fsnotify.Remove, wantChange: true, expectedType: domain.ChangeDeleted},
		{name: "rename", file: "a.md", op: fsnotify.Rename, wantChange: true, expectedType: domain.ChangeDeleted},
		{name: "chmod only", file: "a.md", exists: true, op: fsnotify.Chmod},
		{name: "unsupported extension", file: "a.png", exists: true, op: fsnotify.Create},
		{name: "hidden file", file: ".a.md", exists: true, op: fsnotify.Create},
		{name: "directory with supported name", file: "dir.md", makeDir: true, op: fsnotify.Create},
		{name: "create of vanished file", file: "gone.md", op: fsnotify.Create},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, tt.file)
			switch {
			case tt.makeDir:
				require.NoError(t, os.Mkdir(path, 0o755))
			case tt.exists:
				require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
			}

			change, ok := handleEvent(fsnotify.Event{Name: path, Op: tt.op})

			require.Equal(t, tt.wantChange, ok)
			if tt.wantChange {
				assert.Equal(t, tt.expectedType, change.Type)
				assert.Equal(t, path, change.Path)
			}
		})
	}
}
