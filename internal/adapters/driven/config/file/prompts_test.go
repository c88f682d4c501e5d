package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
	_, err = os.Stat(filepath.Join(dir, "answer.txt"))
	assert.True(t, os.IsNotExist(err), "constructor must not touch disk")
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultAnswerPromptTemplate, prompt)
	for _, name := range []string{"answer.txt", "answer_system.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestPromptStore_Load_UserEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "answer_system.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Be terse.\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "Be terse.", prompt)

	// Existing files are never overwritten by defaults.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "  Be terse.\n", string(data))
}

func TestPromptStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "answer_system.txt"), []byte("Changed"), 0600))

	cached, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerSystemPrompt, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptAnswerSystem)
	require.NoError(t, err)
	assert.Equal(t, "Changed", fresh)
}

func TestPromptStore_Load_Unknown(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("does_not_exist")

	assert.Error(t, err)
}

func TestPromptStore_Load_InitFailureFallsBack(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAnswerPromptTemplate, prompt)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptAnswerSystem)
			assert.NoError(t, err)
			assert.Equal(t, domain.DefaultAnswerSystemPrompt, prompt)
		}()
	}
	wg.Wait()
}
