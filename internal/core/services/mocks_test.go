package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	vector   []float32
	embedErr error
	batchErr error

	// short drops the last vector from EmbedBatch results.
	short bool

	mu          sync.Mutex
	queries     []string
	batchInputs [][]string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchInputs = append(m.batchInputs, texts)
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	n := len(texts)
	if m.short && n > 0 {
		n--
	}
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockStore implements driven.VectorStore for testing.
type mockStore struct {
	hits      []domain.NearestHit
	queryErr  error
	upsertErr error
	clearErr  error
	info      domain.CollectionInfo
	infoErr   error

	mu       sync.Mutex
	lastK    int
	upserted [][]domain.VectorRecord
	cleared  int
}

func (m *mockStore) Upsert(_ context.Context, records []domain.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserted = append(m.upserted, records)
	return m.upsertErr
}

func (m *mockStore) QueryNearest(_ context.Context, _ []float32, k int) ([]domain.NearestHit, error) {
	m.mu.Lock()
	m.lastK = k
	m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	return m.info.Count, m.infoErr
}

func (m *mockStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.cleared++
	m.mu.Unlock()
	return m.clearErr
}

func (m *mockStore) Info(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, m.infoErr
}

func (m *mockStore) Close() error { return nil }

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response string
	err      error

	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockSource implements driven.DocumentSource over an in-memory file set.
type mockSource struct {
	missing    bool
	prepareErr error

	files   []domain.FileInfo
	content map[string]string
	listErr error
	readErr map[string]error
}

func (m *mockSource) Prepare(_ context.Context, _ string) (bool, error) {
	if m.prepareErr != nil {
		return false, m.prepareErr
	}
	created := m.missing
	m.missing = false
	return created, nil
}

func (m *mockSource) List(_ context.Context, _ string) ([]domain.FileInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.files, nil
}

func (m *mockSource) Read(_ context.Context, file domain.FileInfo) (*domain.RawDocument, error) {
	if err := m.readErr[file.Path]; err != nil {
		return nil, err
	}
	return &domain.RawDocument{
		URI:      file.Path,
		MIMEType: "text/plain",
		Content:  []byte(m.content[file.Path]),
	}, nil
}

func (m *mockSource) SupportedExtensions() []string {
	return []string{".txt"}
}

// mockRegistry implements driven.NormaliserRegistry by decoding bytes as text.
type mockRegistry struct {
	failURIs map[string]error
}

func (m *mockRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if err := m.failURIs[raw.URI]; err != nil {
		return nil, err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		URI:     raw.URI,
		Content: string(raw.Content),
	}}, nil
}

func (m *mockRegistry) Register(_ driven.Normaliser) {}

func (m *mockRegistry) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockPipeline implements driven.PostProcessorPipeline with fixed output.
type mockPipeline struct {
	chunks map[string][]domain.Chunk
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	return m.chunks[doc.URI], nil
}

// mockWatcher implements driven.DocumentWatcher over a caller-fed channel.
type mockWatcher struct {
	changes chan domain.DocumentChange
	err     error
}

func (m *mockWatcher) Watch(ctx context.Context, _ string) (<-chan domain.DocumentChange, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan domain.DocumentChange)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-m.changes:
				select {
				case out <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// mockPromptStore serves prompts from a map.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	prompt, ok := m.prompts[name]
	if !ok {
		return "", errors.New("not found")
	}
	return prompt, nil
}
