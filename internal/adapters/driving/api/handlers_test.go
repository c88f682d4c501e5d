package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func serve(t *testing.T, ports *Ports, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	server, err := NewServer(ports)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func testStats() *domain.Stats {
	return &domain.Stats{
		Collection:      domain.CollectionInfo{Name: "developer_docs", Count: 12, Backend: "memory"},
		EmbeddingModel:  "hashing-384",
		SearchAlgorithm: "hybrid",
	}
}

func TestHandleRoot(t *testing.T) {
	ports := validPorts()
	ports.Version = "1.0.0"

	rec := serve(t, ports, http.MethodGet, Prefix+"/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleHealth(t *testing.T) {
	t.Run("healthy with llm", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{stats: testStats()},
			Ingestion: &mockIngestionService{},
			Answer:    &mockAnswerService{model: "llama3.2"},
		}

		rec := serve(t, ports, http.MethodGet, Prefix+"/health", "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[HealthResponse](t, rec)
		assert.Equal(t, "healthy", body.Status)
		assert.Equal(t, 12, body.DatabaseInfo.Count)
		assert.Equal(t, "hashing-384", body.ModelInfo.EmbeddingModel)
		assert.Equal(t, "llama3.2", body.ModelInfo.LLMModel)
		assert.True(t, body.ModelInfo.LLMAvailable)
	})

	t.Run("store failure", func(t *testing.T) {
		ports := &Ports{
			Retrieval: &mockRetrievalService{err: &domain.VectorStoreError{Op: "count", Cause: errors.New("locked")}},
			Ingestion: &mockIngestionService{},
		}

		rec := serve(t, ports, http.MethodGet, Prefix+"/health", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "health check failed", body.Error)
		assert.Contains(t, body.Detail, "locked")
	})
}

func TestHandleUploadDocuments(t *testing.T) {
	ingestion := &mockIngestionService{report: &domain.IngestReport{
		Documents: []domain.DocumentOutcome{
			{SourceFile: "guide.md", FilePath: "docs/guide.md", Chunks: 3},
			{SourceFile: "broken.pdf", FilePath: "docs/broken.pdf", Err: errors.New("bad xref")},
		},
		TotalChunks: 3,
	}}
	ports := &Ports{
		Retrieval:    &mockRetrievalService{},
		Ingestion:    ingestion,
		DocumentsDir: "docs",
	}

	rec := serve(t, ports, http.MethodPost, Prefix+"/upload-documents", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docs", ingestion.lastDir)
	body := decode[UploadResponse](t, rec)
	assert.Equal(t, []string{"guide.md"}, body.ProcessedFiles)
	assert.Equal(t, 3, body.TotalChunks)
	assert.Equal(t, map[string]string{"broken.pdf": "bad xref"}, body.Failures)
	assert.Contains(t, body.Message, "1 of 2 documents failed")
}

func TestHandleUploadDocuments_DirectoryCreated(t *testing.T) {
	ports := &Ports{
		Retrieval: &mockRetrievalService{},
		Ingestion: &mockIngestionService{report: &domain.IngestReport{DirectoryCreated: true}},
	}

	rec := serve(t, ports, http.MethodPost, Prefix+"/upload-documents", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[UploadResponse](t, rec)
	assert.Contains(t, body.Message, "created")
	assert.Empty(t, body.ProcessedFiles)
	assert.Nil(t, body.Failures)
}

func TestHandleAsk(t *testing.T) {
	t.Run("answers with default max results", func(t *testing.T) {
		answerSvc := &mockAnswerService{answer: &domain.Answer{
			Answer:     "Use make build.",
			Confidence: 0.6,
			Sources:    []domain.Source{{Content: "Run make build...", Distance: 0.3}},
		}}
		ports := &Ports{
			Retrieval: &mockRetrievalService{},
			Ingestion: &mockIngestionService{},
			Answer:    answerSvc,
		}

		rec := serve(t, ports, http.MethodPost, Prefix+"/ask", `{"question":"how do I build?"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, domain.Query{Question: "how do I build?", MaxResults: 5}, answerSvc.lastQuery)
		body := decode[domain.Answer](t, rec)
		assert.Equal(t, "Use make build.", body.Answer)
		assert.Equal(t, 0.6, body.Confidence)
		assert.Len(t, body.Sources, 1)
	})

	t.Run("no llm configured", func(t *testing.T) {
		rec := serve(t, validPorts(), http.MethodPost, Prefix+"/ask", `{"question":"q"}`)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		ports := validPorts()
		ports.Answer = &mockAnswerService{}

		rec := serve(t, ports, http.MethodPost, Prefix+"/ask", `{"question":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid json", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("empty question", func(t *testing.T) {
		ports := validPorts()
		ports.Answer = &mockAnswerService{err: domain.ErrEmptyQuery}

		rec := serve(t, ports, http.MethodPost, Prefix+"/ask", `{"question":"   "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := serve(t, validPorts(), http.MethodGet, Prefix+"/ask", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleSearch(t *testing.T) {
	t.Run("returns results", func(t *testing.T) {
		retrieval := &mockRetrievalService{results: []domain.ScoredCandidate{{
			Content:        "Deploy with helm.",
			Metadata:       domain.ChunkMetadata{SourceFile: "deploy.md", FilePath: "docs/deploy.md", TotalChunks: 1},
			RelevanceScore: 0.9,
		}}}
		ports := &Ports{Retrieval: retrieval, Ingestion: &mockIngestionService{}, MaxResults: 8}

		rec := serve(t, ports, http.MethodPost, Prefix+"/search", `{"question":"deploy","max_results":2}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, retrieval.lastQuery.MaxResults)
		body := decode[SearchResponse](t, rec)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, "deploy.md", body.Results[0].Metadata.SourceFile)
	})

	t.Run("empty results encode as array", func(t *testing.T) {
		rec := serve(t, validPorts(), http.MethodPost, Prefix+"/search", `{"question":"nothing"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"results":[]`)
	})

	t.Run("invalid max results", func(t *testing.T) {
		retrieval := &mockRetrievalService{err: fmt.Errorf("max results -1: %w", domain.ErrInvalidInput)}
		ports := &Ports{Retrieval: retrieval, Ingestion: &mockIngestionService{}}

		rec := serve(t, ports, http.MethodPost, Prefix+"/search", `{"question":"q","max_results":-1}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDocumentsInfo(t *testing.T) {
	ingestion := &mockIngestionService{inventory: &domain.Inventory{
		Directory: "docs",
		Files:     []domain.FileInfo{{Name: "a.md", Path: "docs/a.md", Size: 10}},
		TotalSize: 10,
	}}
	ports := &Ports{Retrieval: &mockRetrievalService{}, Ingestion: ingestion, DocumentsDir: "docs"}

	rec := serve(t, ports, http.MethodGet, Prefix+"/documents/info", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "docs", ingestion.lastDir)
	assert.Contains(t, rec.Body.String(), `"filename":"a.md"`)
	assert.Contains(t, rec.Body.String(), `"total_size":10`)
}

func TestHandleStatistics(t *testing.T) {
	ports := &Ports{Retrieval: &mockRetrievalService{stats: testStats()}, Ingestion: &mockIngestionService{}}

	rec := serve(t, ports, http.MethodGet, Prefix+"/search/statistics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[domain.Stats](t, rec)
	assert.Equal(t, "developer_docs", body.Collection.Name)
	assert.Equal(t, "hybrid", body.SearchAlgorithm)
}

func TestHandleClear(t *testing.T) {
	t.Run("clears", func(t *testing.T) {
		ingestion := &mockIngestionService{}
		ports := &Ports{Retrieval: &mockRetrievalService{}, Ingestion: ingestion}

		rec := serve(t, ports, http.MethodDelete, Prefix+"/documents/clear", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, ingestion.cleared)
		assert.NotEmpty(t, decode[map[string]string](t, rec)["message"])
	})

	t.Run("store failure", func(t *testing.T) {
		ports := &Ports{Retrieval: &mockRetrievalService{}, Ingestion: &mockIngestionService{err: errors.New("io")}}

		rec := serve(t, ports, http.MethodDelete, Prefix+"/documents/clear", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(t, validPorts(), http.MethodOptions, Prefix+"/ask", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrEmptyQuery, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrLLMUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
