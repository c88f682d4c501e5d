package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

const maxBodyBytes = 1 << 20

// QuestionRequest is the body of /ask and /search.
type QuestionRequest struct {
	Question   string `json:"question"`
	MaxResults int    `json:"max_results,omitempty"`
}

// UploadResponse reports an ingestion run.
type UploadResponse struct {
	Message        string            `json:"message"`
	ProcessedFiles []string          `json:"processed_files"`
	TotalChunks    int               `json:"total_chunks"`
	Failures       map[string]string `json:"failures,omitempty"`
}

// HealthResponse reports store and model status.
type HealthResponse struct {
	Status       string                `json:"status"`
	DatabaseInfo domain.CollectionInfo `json:"database_info"`
	ModelInfo    ModelInfo             `json:"model_info"`
}

// ModelInfo names the models in use.
type ModelInfo struct {
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model,omitempty"`
	LLMAvailable   bool   `json:"llm_available"`
}

// SearchResponse holds ranked chunks.
type SearchResponse struct {
	Results []domain.ScoredCandidate `json:"results"`
	Count   int                      `json:"count"`
}

// ErrorResponse is written for every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "docqa developer documentation Q&A API",
		"version": s.ports.Version,
		"docs":    Prefix + "/health",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Retrieval.Stats(r.Context())
	if err != nil {
		writeError(w, "health check failed", err)
		return
	}

	info := ModelInfo{EmbeddingModel: stats.EmbeddingModel}
	if s.ports.Answer != nil {
		info.LLMModel = s.ports.Answer.ModelName()
		info.LLMAvailable = info.LLMModel != ""
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:       "healthy",
		DatabaseInfo: stats.Collection,
		ModelInfo:    info,
	})
}

func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	report, err := s.ports.Ingestion.Ingest(r.Context(), s.ports.DocumentsDir)
	if err != nil {
		writeError(w, "document upload failed", err)
		return
	}

	resp := UploadResponse{
		Message:        report.Message(),
		ProcessedFiles: report.ProcessedFiles(),
		TotalChunks:    report.TotalChunks,
	}
	if failed := report.Failed(); len(failed) > 0 {
		resp.Failures = make(map[string]string, len(failed))
		for _, f := range failed {
			resp.Failures[f.SourceFile] = f.Err.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuestion(w, r)
	if !ok {
		return
	}
	if s.ports.Answer == nil {
		writeError(w, "answer generation failed", domain.ErrLLMUnavailable)
		return
	}

	answer, err := s.ports.Answer.Ask(r.Context(), domain.Query{
		Question:   req.Question,
		MaxResults: s.ports.maxResults(req.MaxResults),
	})
	if err != nil {
		writeError(w, "answer generation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeQuestion(w, r)
	if !ok {
		return
	}

	results, err := s.ports.Retrieval.Search(r.Context(), domain.Query{
		Question:   req.Question,
		MaxResults: s.ports.maxResults(req.MaxResults),
	})
	if err != nil {
		writeError(w, "search failed", err)
		return
	}
	if results == nil {
		results = []domain.ScoredCandidate{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

func (s *Server) handleDocumentsInfo(w http.ResponseWriter, r *http.Request) {
	inventory, err := s.ports.Ingestion.Inventory(r.Context(), s.ports.DocumentsDir)
	if err != nil {
		writeError(w, "document info failed", err)
		return
	}
	writeJSON(w, http.StatusOK, inventory)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ports.Retrieval.Stats(r.Context())
	if err != nil {
		writeError(w, "search statistics failed", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Ingestion.Clear(r.Context()); err != nil {
		writeError(w, "clear failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Vector database cleared."})
}

func decodeQuestion(w http.ResponseWriter, r *http.Request) (QuestionRequest, bool) {
	var req QuestionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json", Detail: err.Error()})
		return req, false
	}
	return req, true
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLLMUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("%s: %v", msg, err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing %T response: %v", v, err)
	}
}
