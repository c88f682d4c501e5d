// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/docqa/internal/core/domain"
)

// SearchCompleted carries ranked chunks back to the model.
type SearchCompleted struct {
	Results []domain.ScoredCandidate
	Err     error
}

// AnswerCompleted carries a generated answer back to the model.
type AnswerCompleted struct {
	Answer *domain.Answer
	Err    error
}

// InventoryLoaded carries the documents directory listing.
type InventoryLoaded struct {
	Inventory *domain.Inventory
	Err       error
}

// StatsLoaded carries collection statistics.
type StatsLoaded struct {
	Stats *domain.Stats
	Err   error
}

// IngestCompleted carries the report of an ingestion run.
type IngestCompleted struct {
	Report *domain.IngestReport
	Err    error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewAsk is the question and answer view.
	ViewAsk
	// ViewSearch is the search input and results view.
	ViewSearch
	// ViewDocuments lists the documents directory and runs ingestion.
	ViewDocuments
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewAsk:
		return "ask"
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
