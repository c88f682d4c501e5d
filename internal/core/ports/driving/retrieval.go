package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// RetrievalService ranks stored chunks against a query by fusing vector
// similarity with keyword coverage.
type RetrievalService interface {
	// Search returns up to MaxResults candidates with relevance above the
	// general search threshold, best first.
	Search(ctx context.Context, query domain.Query) ([]domain.ScoredCandidate, error)

	// MostRelevantChunks applies the stricter threshold used for answer context.
	MostRelevantChunks(ctx context.Context, query domain.Query) ([]domain.ScoredCandidate, error)

	// SearchKeywords joins keywords with single spaces and runs Search.
	SearchKeywords(ctx context.Context, keywords []string, maxResults int) ([]domain.ScoredCandidate, error)

	// Stats reports the collection size, embedding model and ranking method.
	Stats(ctx context.Context) (*domain.Stats, error)
}
