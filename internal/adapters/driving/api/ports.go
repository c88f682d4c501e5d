// Package api serves the JSON HTTP API under /api/v1.
// It is a driving adapter over the same ports as the CLI and MCP server.
package api

import (
	"errors"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("api: retrieval service is required")

// ErrMissingIngestionService is returned when the ingestion service is not provided.
var ErrMissingIngestionService = errors.New("api: ingestion service is required")

// Ports aggregates the driving ports served over HTTP.
type Ports struct {
	// Retrieval ranks chunks and reports statistics. Required.
	Retrieval driving.RetrievalService

	// Ingestion loads the documents directory. Required.
	Ingestion driving.IngestionService

	// Answer generates answers. Nil makes /ask return 503.
	Answer driving.AnswerService

	// DocumentsDir is the directory ingested by /upload-documents.
	DocumentsDir string

	// MaxResults is used when a request does not set max_results.
	MaxResults int

	// Version is reported by the root endpoint.
	Version string
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}

func (p *Ports) maxResults(requested int) int {
	if requested != 0 {
		return requested
	}
	if p.MaxResults > 0 {
		return p.MaxResults
	}
	return domain.DefaultMaxResults
}
