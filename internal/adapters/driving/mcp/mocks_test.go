package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.ScoredCandidate
	stats   *domain.Stats
	err     error

	lastQuery domain.Query
}

func (m *mockRetrievalService) Search(_ context.Context, query domain.Query) ([]domain.ScoredCandidate, error) {
	m.lastQuery = query
	return m.results, m.err
}

func (m *mockRetrievalService) MostRelevantChunks(_ context.Context, query domain.Query) ([]domain.ScoredCandidate, error) {
	m.lastQuery = query
	return m.results, m.err
}

func (m *mockRetrievalService) SearchKeywords(
	_ context.Context, keywords []string, maxResults int,
) ([]domain.ScoredCandidate, error) {
	m.lastQuery = domain.Query{Question: strings.Join(keywords, " "), MaxResults: maxResults}
	return m.results, m.err
}

func (m *mockRetrievalService) Stats(_ context.Context) (*domain.Stats, error) {
	return m.stats, m.err
}

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error

	lastQuery domain.Query
}

func (m *mockAnswerService) Ask(_ context.Context, query domain.Query) (*domain.Answer, error) {
	m.lastQuery = query
	return m.answer, m.err
}

func (m *mockAnswerService) ModelName() string {
	return "mock-llm"
}

// mockIngestionService is a mock implementation of driving.IngestionService.
type mockIngestionService struct {
	inventory *domain.Inventory
	err       error

	lastDir string
}

func (m *mockIngestionService) Ingest(_ context.Context, _ string) (*domain.IngestReport, error) {
	return &domain.IngestReport{}, m.err
}

func (m *mockIngestionService) Watch(_ context.Context, _ string, _ func(*domain.IngestReport, error)) error {
	return m.err
}

func (m *mockIngestionService) Inventory(_ context.Context, dir string) (*domain.Inventory, error) {
	m.lastDir = dir
	return m.inventory, m.err
}

func (m *mockIngestionService) Clear(_ context.Context) error {
	return m.err
}
