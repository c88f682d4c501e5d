package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the question or phrase to search the documentation for"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// KeywordsInput is the input schema for the keywords tool.
type KeywordsInput struct {
	Keywords   []string `json:"keywords" jsonschema:"keywords to search for, joined with spaces"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question   string `json:"question" jsonschema:"the question to answer from the documentation"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of context chunks (default 5)"`
}

// SearchOutput is the output schema for the search and keywords tools.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single ranked chunk.
type SearchResultOutput struct {
	SourceFile     string  `json:"source_file"`
	FilePath       string  `json:"file_path"`
	ChunkIndex     int     `json:"chunk_index"`
	RelevanceScore float64 `json:"relevance_score"`
	Distance       float64 `json:"distance"`
	Content        string  `json:"content"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer     string          `json:"answer"`
	Confidence float64         `json:"confidence"`
	Sources    []domain.Source `json:"sources"`
}

// errAnswerUnavailable is returned by the ask tool when no LLM is configured.
var errAnswerUnavailable = errors.New("answer generation is not configured")

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the indexed developer documentation and return the most relevant chunks",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "keywords",
		Description: "Search the indexed documentation by a list of keywords",
	}, s.handleKeywords)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using only the indexed documentation",
	}, s.handleAsk)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.Search(ctx, domain.Query{
		Question:   input.Query,
		MaxResults: s.ports.maxResults(input.MaxResults),
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

// handleKeywords handles the keywords tool invocation.
func (s *Server) handleKeywords(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input KeywordsInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Retrieval.SearchKeywords(ctx, input.Keywords, s.ports.maxResults(input.MaxResults))
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, toSearchOutput(results), nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Answer == nil {
		return nil, AskOutput{}, errAnswerUnavailable
	}

	answer, err := s.ports.Answer.Ask(ctx, domain.Query{
		Question:   input.Question,
		MaxResults: s.ports.maxResults(input.MaxResults),
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:     answer.Answer,
		Confidence: answer.Confidence,
		Sources:    answer.Sources,
	}, nil
}

func toSearchOutput(results []domain.ScoredCandidate) SearchOutput {
	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			SourceFile:     results[i].Metadata.SourceFile,
			FilePath:       results[i].Metadata.FilePath,
			ChunkIndex:     results[i].Metadata.ChunkIndex,
			RelevanceScore: results[i].RelevanceScore,
			Distance:       results[i].VectorDistance,
			Content:        results[i].Content,
		}
	}
	return output
}
