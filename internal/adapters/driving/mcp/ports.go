package mcp

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval ranks stored chunks. Required.
	Retrieval driving.RetrievalService

	// Answer generates answers. Without it the ask tool reports an error.
	Answer driving.AnswerService

	// Ingestion lists the documents directory for the documents resource.
	Ingestion driving.IngestionService

	// DocumentsDir is the directory the documents resource lists.
	DocumentsDir string

	// MaxResults is used when a tool call does not set max_results.
	MaxResults int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

func (p *Ports) maxResults(requested int) int {
	switch {
	case requested > 0:
		return requested
	case p.MaxResults > 0:
		return p.MaxResults
	default:
		return domain.DefaultMaxResults
	}
}
