package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
)

func TestNewSettingsService_Ephemeral(t *testing.T) {
	svc, err := NewSettingsService(Options{Ephemeral: true})
	require.NoError(t, err)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendMemory, settings.Store.Backend)
}

func TestNewSettingsService_ConfigDir(t *testing.T) {
	dir := t.TempDir()

	svc, err := NewSettingsService(Options{ConfigDir: dir})
	require.NoError(t, err)
	require.NoError(t, svc.Set(services.KeyMaxResults, "7"))

	assert.Equal(t, filepath.Join(dir, "config.toml"), svc.Path())
	assert.FileExists(t, svc.Path())
}

func TestNew_EphemeralEndToEnd(t *testing.T) {
	ctx := context.Background()
	opts := Options{Ephemeral: true}

	settingsSvc, err := NewSettingsService(opts)
	require.NoError(t, err)

	docs := t.TempDir()
	require.NoError(t, settingsSvc.Set(services.KeyDocumentsDir, docs))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "deploy.md"),
		[]byte("# Deploy\n\nRun make deploy to ship the service to production."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "logging.txt"),
		[]byte("Logs are written to stdout in JSON format."), 0o644))

	a, err := New(ctx, opts, settingsSvc)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.AI.LLMService)
	require.NoError(t, a.Check(ctx))

	report, err := a.Ingestion.Ingest(ctx, a.Settings.DocumentsDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"deploy.md", "logging.txt"}, report.ProcessedFiles())
	assert.Equal(t, 2, report.TotalChunks)

	results, err := a.Retrieval.Search(ctx, domain.Query{Question: "deploy the service", MaxResults: 3})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "deploy.md", results[0].Metadata.SourceFile)

	stats, err := a.Retrieval.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Collection.Count)
	assert.Equal(t, "memory", stats.Collection.Backend)

	_, err = a.Answer.Ask(ctx, domain.Query{Question: "how do I deploy", MaxResults: 3})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	require.NoError(t, a.Ingestion.Clear(ctx))
	count, err := a.Store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
