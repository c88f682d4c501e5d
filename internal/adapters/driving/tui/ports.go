// Package tui provides an interactive terminal user interface for docqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks chunks and reports statistics.
	Retrieval driving.RetrievalService

	// Ingestion lists and indexes the documents directory.
	Ingestion driving.IngestionService

	// Answer generates answers. Optional; the Ask view reports when it is missing.
	Answer driving.AnswerService

	// DocumentsDir is the directory shown and ingested by the Documents view.
	DocumentsDir string

	// MaxResults is the result count for search and ask.
	MaxResults int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	if p.Ingestion == nil {
		return ErrMissingIngestionService
	}
	return nil
}

func (p *Ports) maxResults() int {
	if p.MaxResults > 0 {
		return p.MaxResults
	}
	return domain.DefaultMaxResults
}
