package plaintext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestPriority(t *testing.T) {
	normaliser := New()

	assert.Equal(t, 5, normaliser.Priority())
	assert.Contains(t, normaliser.SupportedMIMETypes(), "text/plain")
}

func TestNormalise_Success(t *testing.T) {
	modified := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw := &domain.RawDocument{
		URI:      "/docs/getting-started_guide.txt",
		MIMEType: "text/plain",
		Content:  []byte("This is plain text content."),
		Metadata: map[string]any{"modified_at": modified},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	doc := result.Document
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, raw.URI, doc.URI)
	assert.Equal(t, "getting started guide", doc.Title)
	assert.Equal(t, "This is plain text content.", doc.Content)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])
	assert.Equal(t, "getting started guide", doc.Metadata["title"])
	assert.Equal(t, modified, doc.ModifiedAt)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/docs/x.txt",
		MIMEType: "text/plain",
		Metadata: map[string]any{"title": "Release Notes"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", result.Document.Title)
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain", []byte("hello"), "hello"},
		{"bom", []byte("\xef\xbb\xbfhello"), "hello"},
		{"invalid utf8", []byte("caf\xe9"), "caf\uFFFD"},
		{"multibyte", []byte("naïve"), "naïve"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decode(tt.in))
		})
	}
}
