package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// VectorStore persists chunk vectors with their text and metadata and answers
// nearest-neighbour queries. Consistency between concurrent writes and reads
// is the implementation's concern; callers tolerate eventually-consistent reads.
type VectorStore interface {
	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []domain.VectorRecord) error

	// QueryNearest returns up to k hits ordered by ascending distance.
	QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.NearestHit, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes every record from the collection.
	Clear(ctx context.Context) error

	// Info describes the collection.
	Info(ctx context.Context) (domain.CollectionInfo, error)

	// Close releases resources.
	Close() error
}
