package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestionService turns a documents directory into stored chunks.
type IngestionService interface {
	// Ingest loads, chunks, embeds and stores every supported document under dir.
	// Per-document failures are recorded in the report; only batch-level
	// failures (validation, embedding, store) are returned as errors.
	Ingest(ctx context.Context, dir string) (*domain.IngestReport, error)

	// Watch re-runs Ingest whenever supported files under dir change.
	// Reports are passed to onReport. Blocks until ctx is cancelled.
	Watch(ctx context.Context, dir string, onReport func(*domain.IngestReport, error)) error

	// Inventory lists the supported files under dir.
	Inventory(ctx context.Context, dir string) (*domain.Inventory, error)

	// Clear removes every stored chunk.
	Clear(ctx context.Context) error
}
