// Package metadata provides the post-processor that stamps chunk identity
// and mandatory positional metadata.
package metadata

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// carriedKeys are document metadata keys copied onto every chunk.
var carriedKeys = []string{"mime_type", "title", "pages"}

// Processor stamps source_file, file_path, chunk_index, total_chunks and a
// stable identifier on each chunk produced upstream.
type Processor struct{}

// New creates a metadata processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "metadata"
}

// Process stamps chunks in place order. The chunk index is the position in
// the slice, so upstream ordering defines the index.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	sourceFile := filepath.Base(doc.URI)
	if doc.URI == "" {
		sourceFile = ""
	}

	out := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Metadata.SourceFile = sourceFile
		c.Metadata.FilePath = doc.URI
		c.Metadata.ChunkIndex = i
		c.Metadata.TotalChunks = len(chunks)
		c.Metadata.Extra = carry(doc.Metadata, c.Metadata.Extra)
		if doc.URI != "" {
			c.ID = ChunkID(doc.URI, i)
		}
		out[i] = c
	}

	return out, nil
}

// ChunkID derives a stable identifier from the file path and chunk index.
// Re-ingesting the same file yields the same IDs, so upserts replace rather
// than duplicate.
func ChunkID(filePath string, index int) string {
	name := "file://" + filepath.ToSlash(filePath) + "#" + strconv.Itoa(index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func carry(src, dst map[string]any) map[string]any {
	for _, k := range carriedKeys {
		v, ok := src[k]
		if !ok {
			continue
		}
		if dst == nil {
			dst = make(map[string]any)
		}
		dst[k] = v
	}
	return dst
}
