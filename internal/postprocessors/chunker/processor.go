// Package chunker provides a recursive, separator-aware text chunking processor.
package chunker

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy, coarsest first.
// An empty list is ignored.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		if len(separators) > 0 {
			s.separators = separators
		}
	}
}

// Processor splits document content into overlapping chunks.
// It only sets Content and ChunkIndex; metadata stamping happens downstream.
type Processor struct {
	splitter *Splitter
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	return &Processor{splitter: NewSplitter(opts...)}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Splitter returns the underlying splitter.
func (p *Processor) Splitter() *Splitter {
	return p.splitter
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	contents := p.splitter.Split(doc.Content)
	if len(contents) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			Content:  content,
			Metadata: domain.ChunkMetadata{ChunkIndex: i},
		}
	}

	return chunks, nil
}
