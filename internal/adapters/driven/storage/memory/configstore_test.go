package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("documents.dir", "./docs"))
	require.NoError(t, store.Set("documents.dir", "./manuals"))

	val, ok := store.Get("documents.dir")
	assert.True(t, ok)
	assert.Equal(t, "./manuals", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_GetString(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("llm.model", "llama3.2")
	_ = store.Set("chunking.size", 1000)

	assert.Equal(t, "llama3.2", store.GetString("llm.model"))
	assert.Empty(t, store.GetString("chunking.size"), "wrong type reads as empty")
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_GetInt(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("a", 7)
	_ = store.Set("b", int64(8))
	_ = store.Set("c", float64(9))
	_ = store.Set("d", "10")

	assert.Equal(t, 7, store.GetInt("a"))
	assert.Equal(t, 8, store.GetInt("b"))
	assert.Equal(t, 9, store.GetInt("c"))
	assert.Zero(t, store.GetInt("d"))
	assert.Zero(t, store.GetInt("missing"))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("a", 2.5)
	_ = store.Set("b", 3)
	_ = store.Set("c", int64(4))
	_ = store.Set("d", "5")

	assert.InDelta(t, 2.5, store.GetFloat("a"), 1e-9)
	assert.InDelta(t, 3.0, store.GetFloat("b"), 1e-9)
	assert.InDelta(t, 4.0, store.GetFloat("c"), 1e-9)
	assert.Zero(t, store.GetFloat("d"))
}

func TestConfigStore_Keys(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("store.backend", "memory")
	_ = store.Set("chunking.size", 500)
	_ = store.Set("llm.provider", "ollama")

	assert.Equal(t, []string{"chunking.size", "llm.provider", "store.backend"}, store.Keys())
}

func TestConfigStore_SaveLoadPath(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("k", "v")

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"), "Load must not reset values")
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set(fmt.Sprintf("key.%d", n), n)
		}(i)
		go func(n int) {
			defer wg.Done()
			_ = store.GetInt(fmt.Sprintf("key.%d", n))
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 50)
}
