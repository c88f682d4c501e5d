package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockRetrievalService implements driving.RetrievalService for testing.
type MockRetrievalService struct {
	SearchFunc func(ctx context.Context, query domain.Query) ([]domain.ScoredCandidate, error)
	StatsFunc  func(ctx context.Context) (*domain.Stats, error)
}

func (m *MockRetrievalService) Search(ctx context.Context, query domain.Query) ([]domain.ScoredCandidate, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query)
	}
	return []domain.ScoredCandidate{}, nil
}

func (m *MockRetrievalService) MostRelevantChunks(
	ctx context.Context, query domain.Query,
) ([]domain.ScoredCandidate, error) {
	return m.Search(ctx, query)
}

func (m *MockRetrievalService) SearchKeywords(
	_ context.Context, _ []string, _ int,
) ([]domain.ScoredCandidate, error) {
	return []domain.ScoredCandidate{}, nil
}

func (m *MockRetrievalService) Stats(ctx context.Context) (*domain.Stats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &domain.Stats{Collection: domain.CollectionInfo{Name: "documents", Backend: "memory"}}, nil
}

// MockAnswerService implements driving.AnswerService for testing.
type MockAnswerService struct {
	AskFunc func(ctx context.Context, query domain.Query) (*domain.Answer, error)
}

func (m *MockAnswerService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, query)
	}
	return &domain.Answer{Answer: domain.NoRelevantDocumentsAnswer, Sources: []domain.Source{}}, nil
}

func (m *MockAnswerService) ModelName() string {
	return "mock-llm"
}

// MockIngestionService implements driving.IngestionService for testing.
type MockIngestionService struct {
	IngestFunc    func(ctx context.Context, dir string) (*domain.IngestReport, error)
	InventoryFunc func(ctx context.Context, dir string) (*domain.Inventory, error)
}

func (m *MockIngestionService) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, dir)
	}
	return &domain.IngestReport{}, nil
}

func (m *MockIngestionService) Watch(_ context.Context, _ string, _ func(*domain.IngestReport, error)) error {
	return nil
}

func (m *MockIngestionService) Inventory(ctx context.Context, dir string) (*domain.Inventory, error) {
	if m.InventoryFunc != nil {
		return m.InventoryFunc(ctx, dir)
	}
	return &domain.Inventory{Directory: dir, Files: []domain.FileInfo{}}, nil
}

func (m *MockIngestionService) Clear(_ context.Context) error {
	return nil
}
