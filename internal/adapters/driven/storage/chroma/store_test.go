package chroma

import (
	"bytes"
	"context"
	"os"
	"testing"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

func TestDocumentMetadata_RoundTrip(t *testing.T) {
	in := domain.ChunkMetadata{
		SourceFile:  "guide.md",
		FilePath:    "docs/guide.md",
		ChunkIndex:  2,
		TotalChunks: 5,
		Extra:       map[string]any{"mime_type": "text/markdown"},
	}

	md, err := toDocumentMetadata(in)
	require.NoError(t, err)

	assert.Equal(t, in, fromDocumentMetadata(md))
}

func TestFromDocumentMetadata_Missing(t *testing.T) {
	assert.Equal(t, domain.ChunkMetadata{}, fromDocumentMetadata(nil))

	md := chroma.NewDocumentMetadata(
		chroma.NewStringAttribute(domain.MetaSourceFile, "a.txt"),
		chroma.NewStringAttribute(metaExtra, "{not json"),
	)
	got := fromDocumentMetadata(md)

	assert.Equal(t, "a.txt", got.SourceFile)
	assert.Empty(t, got.FilePath)
	assert.Nil(t, got.Extra)
	assert.NotEmpty(t, got.MissingFields())
}

func TestFromDocumentMetadata_LogsBadExtra(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	md := chroma.NewDocumentMetadata(
		chroma.NewStringAttribute(domain.MetaFilePath, "docs/a.txt"),
		chroma.NewStringAttribute(metaExtra, "{not json"),
	)
	got := fromDocumentMetadata(md)

	assert.Nil(t, got.Extra)
	assert.Contains(t, buf.String(), "[DEBUG] chroma: dropping unreadable extra metadata for docs/a.txt")
}

func TestBuildHits(t *testing.T) {
	md, err := toDocumentMetadata(domain.ChunkMetadata{SourceFile: "a.md", FilePath: "a.md", TotalChunks: 1})
	require.NoError(t, err)

	hits := buildHits([]row{
		{id: "1", content: "first", meta: md, distance: 0.1},
		{id: "2", content: "second", distance: 0.4},
	})

	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].Content)
	assert.Equal(t, "a.md", hits[0].Metadata.SourceFile)
	assert.InDelta(t, 0.1, hits[0].Distance, 1e-9)
	assert.Equal(t, "2", hits[1].ID)
	assert.Equal(t, domain.ChunkMetadata{}, hits[1].Metadata)
}

func TestEmbeddingFunction(t *testing.T) {
	ef := &embeddingFunction{svc: hashing.NewEmbeddingService(16)}

	docs, err := ef.EmbedDocuments(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	query, err := ef.EmbedQuery(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, docs[0].ContentAsFloat32(), query.ContentAsFloat32())
}
