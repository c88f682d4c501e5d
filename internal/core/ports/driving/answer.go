package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// AnswerService answers questions from retrieved document context.
type AnswerService interface {
	// Ask retrieves the most relevant chunks and generates an answer from them.
	// When nothing relevant is found, it returns a fixed answer with zero
	// confidence without calling the LLM.
	Ask(ctx context.Context, query domain.Query) (*domain.Answer, error)

	// ModelName returns the LLM model name, empty when no LLM is configured.
	ModelName() string
}
