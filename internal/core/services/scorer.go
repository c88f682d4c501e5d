package services

import (
	"strings"
	"unicode"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// Ranking constants. They are untuned heuristics kept for compatibility
// with existing corpora and are the first candidates for calibration.
const (
	// VectorWeight is the share of the vector score in the fused relevance.
	VectorWeight = 0.7

	// KeywordWeight is the share of the keyword score in the fused relevance.
	KeywordWeight = 0.3

	// SearchThreshold is the minimum relevance (exclusive) for general search.
	SearchThreshold = 0.3

	// MostRelevantThreshold is the minimum relevance (exclusive) for answer context.
	MostRelevantThreshold = 0.5

	// SearchOverfetchFactor multiplies max results when querying the store.
	SearchOverfetchFactor = 3

	// SearchOverfetchCap bounds the general search over-fetch.
	SearchOverfetchCap = 20

	// MostRelevantOverfetchFactor multiplies max results for answer context.
	MostRelevantOverfetchFactor = 2
)

// Tokenize returns the set of lowercase word tokens in text. A word is a
// maximal run of letters and digits.
func Tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, word := range strings.FieldsFunc(text, isSeparator) {
		tokens[strings.ToLower(word)] = struct{}{}
	}
	return tokens
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// KeywordScore returns the fraction of unique query tokens present in content.
// It is 0 when the query has no tokens. Repeated terms do not count twice.
func KeywordScore(query, content string) float64 {
	return keywordCoverage(Tokenize(query), Tokenize(content))
}

func keywordCoverage(queryTokens, contentTokens map[string]struct{}) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	matched := 0
	for token := range queryTokens {
		if _, ok := contentTokens[token]; ok {
			matched++
		}
	}

	return clamp01(float64(matched) / float64(len(queryTokens)))
}

// VectorScore converts a store distance into a similarity score.
// The distance is taken as-is; no range validation is applied.
func VectorScore(distance float64) float64 {
	return 1 - distance
}

// FuseScore combines vector and keyword scores into a single relevance.
func FuseScore(vectorScore, keywordScore float64) float64 {
	return VectorWeight*vectorScore + KeywordWeight*keywordScore
}

// Scorer ranks nearest-neighbour hits against one query. The query is
// tokenized once; scoring is otherwise a pure function of its inputs.
type Scorer struct {
	queryTokens map[string]struct{}
}

// NewScorer creates a scorer for the given query text.
func NewScorer(query string) *Scorer {
	return &Scorer{queryTokens: Tokenize(query)}
}

// Score computes the keyword, vector and fused scores for one hit.
func (s *Scorer) Score(hit domain.NearestHit) domain.ScoredCandidate {
	vector := VectorScore(hit.Distance)
	keyword := keywordCoverage(s.queryTokens, Tokenize(hit.Content))

	return domain.ScoredCandidate{
		Content:        hit.Content,
		Metadata:       hit.Metadata,
		VectorDistance: hit.Distance,
		VectorScore:    vector,
		KeywordScore:   keyword,
		RelevanceScore: FuseScore(vector, keyword),
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
