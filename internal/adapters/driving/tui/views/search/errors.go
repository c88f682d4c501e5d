package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoRetrievalService indicates that no retrieval service was provided.
	ErrNoRetrievalService = errors.New("retrieval service is required")

	// ErrNoAnswerService indicates that answer generation is not configured.
	ErrNoAnswerService = errors.New("no LLM configured; run 'docqa settings llm'")
)
