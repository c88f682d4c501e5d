package cli

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func sampleResults() []domain.ScoredCandidate {
	return []domain.ScoredCandidate{{
		Content: "Configure the   cluster\nwith kubectl apply.",
		Metadata: domain.ChunkMetadata{
			SourceFile:  "setup.md",
			FilePath:    "docs/setup.md",
			ChunkIndex:  1,
			TotalChunks: 4,
		},
		VectorScore:    0.8,
		KeywordScore:   0.5,
		RelevanceScore: 0.71,
	}}
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.results = sampleResults()

	out, err := executeCommand(t, nil, "search", "configure cluster", "-n", "3")

	require.NoError(t, err)
	assert.Equal(t, domain.Query{Question: "configure cluster", MaxResults: 3}, ts.retrieval.lastQuery)
	assert.Contains(t, out, "[1] setup.md (chunk 2/4) 0.71")
	assert.Contains(t, out, "vector 0.80, keyword 0.50")
	assert.Contains(t, out, "Configure the cluster with kubectl apply.")
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand(t, nil, "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.results = sampleResults()

	out, err := executeCommand(t, nil, "search", "cluster", "--json")
	require.NoError(t, err)

	var payload struct {
		Results []domain.ScoredCandidate `json:"results"`
		Count   int                      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "setup.md", payload.Results[0].Metadata.SourceFile)
}

func TestSearchCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.err = domain.ErrEmptyQuery

	_, err := executeCommand(t, nil, "search", " ")

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, nil, "search")

	assert.Error(t, err)
}

func TestKeywordsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.results = sampleResults()

	out, err := executeCommand(t, nil, "keywords", "kubectl", "apply")

	require.NoError(t, err)
	assert.Equal(t, []string{"kubectl", "apply"}, ts.retrieval.lastKeywords)
	assert.Equal(t, domain.DefaultMaxResults, ts.retrieval.lastQuery.MaxResults)
	assert.Contains(t, out, "setup.md")
}

func TestAskCmd_PrintsAnswer(t *testing.T) {
	ts := setupTestServices(t)
	ts.answer.answer = &domain.Answer{
		Answer:     "Apply the manifest with kubectl.",
		Confidence: 0.64,
		Sources: []domain.Source{{
			Content:  "Configure the cluster...",
			Metadata: domain.ChunkMetadata{SourceFile: "setup.md", ChunkIndex: 0, TotalChunks: 4},
			Distance: 0.25,
		}},
	}

	out, err := executeCommand(t, nil, "ask", "how do I configure the cluster?")

	require.NoError(t, err)
	assert.Equal(t, "how do I configure the cluster?", ts.answer.lastQuery.Question)
	assert.Contains(t, out, "Apply the manifest with kubectl.")
	assert.Contains(t, out, "Confidence: 0.64")
	assert.Contains(t, out, "[1] setup.md (chunk 1/4, distance 0.250)")
}

func TestAskCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.answer.answer = &domain.Answer{Answer: domain.NoRelevantDocumentsAnswer, Sources: []domain.Source{}}

	out, err := executeCommand(t, nil, "ask", "unknown", "--json")
	require.NoError(t, err)

	var answer domain.Answer
	require.NoError(t, json.Unmarshal([]byte(out), &answer))
	assert.Equal(t, domain.NoRelevantDocumentsAnswer, answer.Answer)
	assert.Zero(t, answer.Confidence)
}

func TestAskCmd_NoLLM(t *testing.T) {
	ts := setupTestServices(t)
	ts.answer.err = domain.ErrLLMUnavailable

	_, err := executeCommand(t, nil, "ask", "why?")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	assert.Contains(t, err.Error(), "docqa settings llm")
}

func TestIngestCmd_UsesConfiguredDirectory(t *testing.T) {
	ts := setupTestServices(t)
	require.NoError(t, ts.settings.Set("documents.dir", "/srv/docs"))
	ts.ingestion.report = &domain.IngestReport{
		Documents: []domain.DocumentOutcome{
			{SourceFile: "a.md", FilePath: "/srv/docs/a.md", Chunks: 2},
			{SourceFile: "b.pdf", FilePath: "/srv/docs/b.pdf", Err: errors.New("no text layer")},
		},
		TotalChunks: 2,
	}

	out, err := executeCommand(t, nil, "ingest")

	require.NoError(t, err)
	assert.Equal(t, "/srv/docs", ts.ingestion.lastDir)
	assert.Contains(t, out, "2 document chunks processed; 1 of 2 documents failed.")
	assert.Contains(t, out, "a.md: 2 chunks")
	assert.Contains(t, out, "b.pdf: no text layer")
}

func TestIngestCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.report = &domain.IngestReport{
		Documents:   []domain.DocumentOutcome{{SourceFile: "a.md", FilePath: "docs/a.md", Chunks: 3}},
		TotalChunks: 3,
	}

	out, err := executeCommand(t, nil, "ingest", "docs", "--json")
	require.NoError(t, err)

	var payload struct {
		Message        string            `json:"message"`
		ProcessedFiles []string          `json:"processed_files"`
		TotalChunks    int               `json:"total_chunks"`
		Failures       map[string]string `json:"failures"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "docs", ts.ingestion.lastDir)
	assert.Equal(t, "3 document chunks processed successfully.", payload.Message)
	assert.Equal(t, []string{"a.md"}, payload.ProcessedFiles)
	assert.Equal(t, 3, payload.TotalChunks)
	assert.Empty(t, payload.Failures)
}

func TestIngestCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.err = errors.New("store unavailable")

	_, err := executeCommand(t, nil, "ingest", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion failed")
}

func TestDocsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.inventory = &domain.Inventory{
		Directory: "docs",
		Files: []domain.FileInfo{{
			Name:       "guide.md",
			Path:       "docs/guide.md",
			Size:       2048,
			ModifiedAt: time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		}},
		TotalSize: 2048,
	}

	out, err := executeCommand(t, nil, "docs", "docs")

	require.NoError(t, err)
	assert.Contains(t, out, "Documents in docs:")
	assert.Contains(t, out, "guide.md")
	assert.Contains(t, out, "2026-01-02 03:04")
	assert.Contains(t, out, "1 files, 2.0 KiB total")
}

func TestDocsCmd_Empty(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.inventory = &domain.Inventory{Directory: "docs", Files: []domain.FileInfo{}}

	out, err := executeCommand(t, nil, "docs", "docs")

	require.NoError(t, err)
	assert.Contains(t, out, "No documents in docs.")
}

func TestDocsCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.inventory = &domain.Inventory{
		Directory: "docs",
		Files:     []domain.FileInfo{{Name: "guide.md", Size: 10}},
		TotalSize: 10,
	}

	out, err := executeCommand(t, nil, "docs", "docs", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"documents_directory": "docs"`)
	assert.Contains(t, out, `"filename": "guide.md"`)
	assert.Contains(t, out, `"total_size": 10`)
}

func TestStatsCmd(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.stats = &domain.Stats{
		Collection: domain.CollectionInfo{
			Name:     "documents",
			Count:    42,
			Backend:  "sqlite",
			Location: "/home/dev/.docqa/vectors.db",
		},
		EmbeddingModel:  "hashing-384",
		SearchAlgorithm: "hybrid",
	}

	out, err := executeCommand(t, nil, "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunks: 42")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Location: /home/dev/.docqa/vectors.db")
	assert.Contains(t, out, "Embedding model: hashing-384")
}

func TestStatsCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.stats = &domain.Stats{Collection: domain.CollectionInfo{Name: "documents", Count: 7}}

	out, err := executeCommand(t, nil, "stats", "--json")

	require.NoError(t, err)
	assert.Contains(t, out, `"document_count": 7`)
	assert.Contains(t, out, `"database_info"`)
}

func TestClearCmd(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		stdin       string
		wantCleared bool
		wantOutput  string
	}{
		{"confirmed", []string{"clear"}, "y\n", true, "All documents cleared successfully."},
		{"confirmed with yes", []string{"clear"}, "YES\n", true, "All documents cleared successfully."},
		{"declined", []string{"clear"}, "n\n", false, "Cancelled."},
		{"empty input", []string{"clear"}, "", false, "Cancelled."},
		{"skip prompt", []string{"clear", "--yes"}, "", true, "All documents cleared successfully."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServices(t)

			out, err := executeCommand(t, strings.NewReader(tt.stdin), tt.args...)

			require.NoError(t, err)
			assert.Equal(t, tt.wantCleared, ts.ingestion.cleared)
			assert.Contains(t, out, tt.wantOutput)
		})
	}
}

func TestClearCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.ingestion.err = errors.New("locked")

	_, err := executeCommand(t, nil, "clear", "-y")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t c", 10))
	assert.Equal(t, "abc...", snippet("abcdef", 3))
	assert.Equal(t, "héllo", snippet("héllo", 5))
}

func TestServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.NotNil(t, serveCmd.Flags().Lookup("host"))

	port := serveCmd.Flags().Lookup("port")
	require.NotNil(t, port)
	assert.Equal(t, "p", port.Shorthand)
}

func TestMCPServeCmd_Flags(t *testing.T) {
	assert.Equal(t, "serve", mcpServeCmd.Use)
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("port"))
}

func TestTUICmd_Metadata(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
	assert.NotNil(t, tuiCmd.RunE)
}

func TestIngestCmd_Flags(t *testing.T) {
	watch := ingestCmd.Flags().Lookup("watch")
	require.NotNil(t, watch)
	assert.Equal(t, "w", watch.Shorthand)
	assert.NotNil(t, ingestCmd.Flags().Lookup("json"))
}
