package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore using
// brute-force cosine distance. Records keep their insertion order, which
// breaks distance ties.
type VectorStore struct {
	mu         sync.RWMutex
	collection string
	order      []string
	records    map[string]domain.VectorRecord
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore(collection string) *VectorStore {
	if collection == "" {
		collection = domain.DefaultCollectionName
	}
	return &VectorStore{
		collection: collection,
		records:    make(map[string]domain.VectorRecord),
	}
}

// Upsert inserts or replaces records by ID.
func (s *VectorStore) Upsert(ctx context.Context, records []domain.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r.ID == "" {
			return fmt.Errorf("memory: record without id")
		}
		if _, exists := s.records[r.ID]; !exists {
			s.order = append(s.order, r.ID)
		}
		r.Vector = append([]float32(nil), r.Vector...)
		s.records[r.ID] = r
	}
	return nil
}

// QueryNearest returns up to k hits ordered by ascending cosine distance.
func (s *VectorStore) QueryNearest(ctx context.Context, vector []float32, k int) ([]domain.NearestHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]vecmath.Scored, 0, len(s.order))
	for i, id := range s.order {
		d, err := vecmath.CosineDistance(vector, s.records[id].Vector)
		if err != nil {
			return nil, fmt.Errorf("memory: record %q: %w", id, err)
		}
		scored = append(scored, vecmath.Scored{Index: i, Distance: d})
	}

	top := vecmath.TopK(scored, k)
	hits := make([]domain.NearestHit, len(top))
	for i, sc := range top {
		r := s.records[s.order[sc.Index]]
		hits[i] = domain.NearestHit{
			ID:       r.ID,
			Content:  r.Content,
			Metadata: r.Metadata,
			Distance: sc.Distance,
		}
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Clear removes every record.
func (s *VectorStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.records = make(map[string]domain.VectorRecord)
	return nil
}

// Info describes the collection.
func (s *VectorStore) Info(ctx context.Context) (domain.CollectionInfo, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return domain.CollectionInfo{}, err
	}
	return domain.CollectionInfo{
		Name:    s.collection,
		Count:   count,
		Backend: string(domain.StoreBackendMemory),
	}, nil
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}
