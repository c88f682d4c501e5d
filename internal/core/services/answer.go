package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

const (
	// SourcePreviewLength is the number of characters kept in a source preview.
	SourcePreviewLength = 200

	// answerMaxTokens bounds the generated answer.
	answerMaxTokens = 1024

	// answerTemperature keeps answers close to the context.
	answerTemperature = 0.2
)

// AnswerService generates answers grounded in the most relevant chunks.
type AnswerService struct {
	retrieval   driving.RetrievalService
	llm         driven.LLMService
	promptStore driven.PromptStore
}

// NewAnswerService creates a new answer service.
// The llm parameter is optional; without it Ask returns ErrLLMUnavailable.
func NewAnswerService(retrieval driving.RetrievalService, llm driven.LLMService) *AnswerService {
	return &AnswerService{
		retrieval: retrieval,
		llm:       llm,
	}
}

// SetPromptStore sets the store for customised answer prompts.
// If not set, the service uses the built-in prompts.
func (s *AnswerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// ModelName returns the configured LLM model, or "" if none.
func (s *AnswerService) ModelName() string {
	if s.llm == nil {
		return ""
	}
	return s.llm.ModelName()
}

// Ask answers a question from the most relevant chunks. When no chunk
// clears the answer threshold the fixed no-documents answer is returned
// and the LLM is not called.
func (s *AnswerService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	chunks, err := s.retrieval.MostRelevantChunks(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		logger.Info("No relevant chunks for %q", query.Question)
		return &domain.Answer{
			Answer:  domain.NoRelevantDocumentsAnswer,
			Sources: []domain.Source{},
		}, nil
	}

	contexts := make([]string, len(chunks))
	for i := range chunks {
		contexts[i] = chunks[i].Content
	}

	template := s.loadPrompt(driven.PromptAnswer, domain.DefaultAnswerPromptTemplate)
	if !validTemplate(template) {
		logger.Warn("Ignoring answer prompt: it must contain exactly two %%s verbs")
		template = domain.DefaultAnswerPromptTemplate
	}
	prompt := buildPrompt(template, NormalizeQuery(query.Question), contexts)
	logger.Debug("Prompt: %d chunks, %d characters", len(contexts), utf8.RuneCountInString(prompt))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		System:      s.loadPrompt(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt),
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := make([]domain.Source, len(chunks))
	for i, c := range chunks {
		sources[i] = domain.Source{
			Content:  PreviewContent(c.Content),
			Metadata: c.Metadata,
			Distance: c.VectorDistance,
		}
	}

	return &domain.Answer{
		Answer:     text,
		Sources:    sources,
		Confidence: Confidence(contexts, text),
		Model:      s.llm.ModelName(),
	}, nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *AnswerService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}

// validTemplate reports whether tmpl has exactly the two %s verbs the
// answer prompt needs and no other formatting verbs.
func validTemplate(tmpl string) bool {
	escaped := strings.Count(tmpl, "%%")
	return strings.Count(tmpl, "%s") == 2 && strings.Count(tmpl, "%")-2*escaped == 2
}

// buildPrompt fills tmpl with the context chunks, separated by blank
// lines, and then the question.
func buildPrompt(tmpl, question string, contexts []string) string {
	return fmt.Sprintf(tmpl, strings.Join(contexts, "\n\n"), question)
}

// Confidence estimates answer confidence from the answer length relative
// to the context and the number of context chunks. The result is in
// [0, 1], rounded to two decimals, and 0 when there is no context.
func Confidence(contexts []string, answer string) float64 {
	total := 0
	for _, c := range contexts {
		total += utf8.RuneCountInString(c)
	}
	if total == 0 {
		return 0
	}

	base := math.Min(1, float64(utf8.RuneCountInString(answer))/(float64(total)*0.1))
	bonus := math.Min(0.2, float64(len(contexts))*0.05)

	return math.Round(math.Min(1, base+bonus)*100) / 100
}

// PreviewContent returns the first SourcePreviewLength characters of
// content followed by an ellipsis.
func PreviewContent(content string) string {
	if utf8.RuneCountInString(content) <= SourcePreviewLength {
		return content + "..."
	}
	return string([]rune(content)[:SourcePreviewLength]) + "..."
}
