package api

import (
	"context"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

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

type mockAnswerService struct {
	answer *domain.Answer
	model  string
	err    error

	lastQuery domain.Query
}

func (m *mockAnswerService) Ask(_ context.Context, query domain.Query) (*domain.Answer, error) {
	m.lastQuery = query
	return m.answer, m.err
}

func (m *mockAnswerService) ModelName() string {
	return m.model
}

type mockIngestionService struct {
	report    *domain.IngestReport
	inventory *domain.Inventory
	err       error

	lastDir string
	cleared bool
}

func (m *mockIngestionService) Ingest(_ context.Context, dir string) (*domain.IngestReport, error) {
	m.lastDir = dir
	return m.report, m.err
}

func (m *mockIngestionService) Watch(_ context.Context, _ string, _ func(*domain.IngestReport, error)) error {
	return m.err
}

func (m *mockIngestionService) Inventory(_ context.Context, dir string) (*domain.Inventory, error) {
	m.lastDir = dir
	return m.inventory, m.err
}

func (m *mockIngestionService) Clear(_ context.Context) error {
	m.cleared = true
	return m.err
}
