package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// SearchAlgorithm describes the ranking method reported by Stats.
const SearchAlgorithm = "Hybrid: 0.7 x cosine similarity + 0.3 x keyword coverage"

// rankPolicy holds the parameters that differ between retrieval entry points.
type rankPolicy struct {
	name      string
	threshold float64
	fetchSize func(maxResults int) int
}

var (
	searchPolicy = rankPolicy{
		name:      "Search",
		threshold: SearchThreshold,
		fetchSize: func(n int) int { return min(n*SearchOverfetchFactor, SearchOverfetchCap) },
	}

	mostRelevantPolicy = rankPolicy{
		name:      "Most Relevant Chunks",
		threshold: MostRelevantThreshold,
		fetchSize: func(n int) int { return n * MostRelevantOverfetchFactor },
	}
)

// RetrievalService runs the hybrid retrieval pipeline: embed the query,
// over-fetch nearest neighbours, fuse vector and keyword scores, then
// threshold and truncate. It holds no per-call state and is safe for
// concurrent use if its collaborators are.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
	}
}

// Search returns candidates with relevance above SearchThreshold.
func (s *RetrievalService) Search(ctx context.Context, query domain.Query) ([]domain.ScoredCandidate, error) {
	return s.retrieve(ctx, query, searchPolicy)
}

// MostRelevantChunks returns candidates with relevance above
// MostRelevantThreshold. Answer generation uses this stricter cut.
func (s *RetrievalService) MostRelevantChunks(
	ctx context.Context, query domain.Query,
) ([]domain.ScoredCandidate, error) {
	return s.retrieve(ctx, query, mostRelevantPolicy)
}

// SearchKeywords joins keywords with single spaces and runs Search.
func (s *RetrievalService) SearchKeywords(
	ctx context.Context, keywords []string, maxResults int,
) ([]domain.ScoredCandidate, error) {
	return s.Search(ctx, domain.Query{
		Question:   strings.Join(keywords, " "),
		MaxResults: maxResults,
	})
}

// Stats reports the collection size, embedding model and ranking method.
func (s *RetrievalService) Stats(ctx context.Context) (*domain.Stats, error) {
	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, &domain.VectorStoreError{Op: "info", Cause: err}
	}

	return &domain.Stats{
		Collection:      info,
		EmbeddingModel:  s.embedder.ModelName(),
		SearchAlgorithm: SearchAlgorithm,
	}, nil
}

func (s *RetrievalService) retrieve(
	ctx context.Context, query domain.Query, policy rankPolicy,
) ([]domain.ScoredCandidate, error) {
	logger.Section(policy.name)

	question := NormalizeQuery(query.Question)
	logger.Debug("Query: %q", question)
	if question == "" {
		return nil, domain.ErrEmptyQuery
	}
	if query.MaxResults < 1 {
		return nil, fmt.Errorf("max results %d: %w", query.MaxResults, domain.ErrInvalidInput)
	}

	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		return nil, &domain.EmbeddingError{Query: question, Cause: err}
	}
	if len(vector) == 0 {
		return nil, &domain.EmbeddingError{Query: question}
	}

	k := policy.fetchSize(query.MaxResults)
	logger.Debug("Fetching %d nearest neighbours for %d results", k, query.MaxResults)

	hits, err := s.store.QueryNearest(ctx, vector, k)
	if err != nil {
		if isContextError(err) {
			return nil, err
		}
		return nil, &domain.VectorStoreError{Op: "query", Query: question, Cause: err}
	}

	scorer := NewScorer(question)
	candidates := make([]domain.ScoredCandidate, len(hits))
	for i := range hits {
		candidates[i] = scorer.Score(hits[i])
	}

	RankCandidates(candidates)
	results := FilterAndTruncate(candidates, policy.threshold, query.MaxResults)

	logger.Info("%d of %d candidates above %.2f", len(results), len(candidates), policy.threshold)
	return results, nil
}

// NormalizeQuery collapses whitespace runs to single spaces and trims the ends.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(q), " ")
}

// RankCandidates sorts by relevance descending, breaking ties by vector
// distance ascending. Remaining ties keep their store order.
func RankCandidates(candidates []domain.ScoredCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].RelevanceScore != candidates[j].RelevanceScore {
			return candidates[i].RelevanceScore > candidates[j].RelevanceScore
		}
		return candidates[i].VectorDistance < candidates[j].VectorDistance
	})
}

// FilterAndTruncate keeps ranked candidates whose relevance is strictly
// above threshold, up to limit entries. A candidate whose content equals
// a higher-ranked one is dropped.
func FilterAndTruncate(ranked []domain.ScoredCandidate, threshold float64, limit int) []domain.ScoredCandidate {
	results := make([]domain.ScoredCandidate, 0, min(len(ranked), limit))
	seen := make(map[string]struct{}, len(ranked))
	for _, c := range ranked {
		if len(results) == limit {
			break
		}
		if c.RelevanceScore <= threshold {
			continue
		}
		if _, dup := seen[c.Content]; dup {
			continue
		}
		seen[c.Content] = struct{}{}
		results = append(results, c)
	}
	return results
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
