// Package search provides the ask and search views for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Mode selects what the view does with a submitted query.
type Mode int

const (
	// ModeSearch ranks chunks and lists them.
	ModeSearch Mode = iota
	// ModeAsk generates an answer from the most relevant chunks.
	ModeAsk
)

// Services are the driving ports the view calls.
type Services struct {
	Retrieval  driving.RetrievalService
	Answer     driving.AnswerService
	MaxResults int
}

// View represents the query view with input, results, and status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QueryInput
	list      *list.ResultList
	statusbar *status.Bar

	mode     Mode
	services Services
	ctx      context.Context

	answer *domain.Answer

	width      int
	height     int
	ready      bool
	err        error
	busy       bool
	focusInput bool // true = input mode (typing), false = results mode (navigating)
}

// NewView creates a new query view in the given mode.
func NewView(s *styles.Styles, km *keymap.KeyMap, mode Mode, services Services) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if services.MaxResults < 1 {
		services.MaxResults = domain.DefaultMaxResults
	}

	label, placeholder := "Search", "Search the documentation..."
	if mode == ModeAsk {
		label, placeholder = "Ask", "Ask a question about the documentation..."
	}

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQueryInput(s, label, placeholder),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s),
		mode:       mode,
		services:   services,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
	v.statusbar.SetHints(km.InputHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.AnswerCompleted:
		v.handleAnswerCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Esc always signals to go back to menu
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.busy {
		return v, nil
	}

	if msg.Type == tea.KeyEnter && v.focusInput {
		query := strings.TrimSpace(v.input.Value())
		if query == "" {
			return v, nil
		}
		return v, v.submit(query)
	}

	if v.focusInput {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch msg.String() {
	case "n":
		v.focusInput = true
		v.input.SetValue("")
		v.statusbar.SetHints(v.keymap.InputHelp())
		return v, v.input.Focus()
	case "up", "k":
		v.list.MoveUp()
	case "down", "j":
		v.list.MoveDown()
	}
	return v, nil
}

// submit starts the query and the spinner.
func (v *View) submit(query string) tea.Cmd {
	v.busy = true
	v.err = nil
	v.focusInput = false
	v.input.Blur()

	if v.mode == ModeAsk {
		return tea.Batch(v.statusbar.Start("Thinking..."), v.performAsk(query))
	}
	return tea.Batch(v.statusbar.Start("Searching..."), v.performSearch(query))
}

func (v *View) performSearch(query string) tea.Cmd {
	retrieval := v.services.Retrieval
	q := domain.Query{Question: query, MaxResults: v.services.MaxResults}
	ctx := v.ctx
	return func() tea.Msg {
		if retrieval == nil {
			return messages.SearchCompleted{Err: ErrNoRetrievalService}
		}
		results, err := retrieval.Search(ctx, q)
		return messages.SearchCompleted{Results: results, Err: err}
	}
}

func (v *View) performAsk(query string) tea.Cmd {
	answerSvc := v.services.Answer
	q := domain.Query{Question: query, MaxResults: v.services.MaxResults}
	ctx := v.ctx
	return func() tea.Msg {
		if answerSvc == nil {
			return messages.AnswerCompleted{Err: ErrNoAnswerService}
		}
		answer, err := answerSvc.Ask(ctx, q)
		return messages.AnswerCompleted{Answer: answer, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	v.busy = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.list.SetResults(msg.Results)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetResultCount(len(msg.Results))
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

func (v *View) handleAnswerCompleted(msg messages.AnswerCompleted) {
	v.busy = false
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.answer = msg.Answer
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage(fmt.Sprintf("Confidence %.2f", msg.Answer.Confidence))
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

func (v *View) setError(err error) {
	v.busy = false
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
	v.statusbar.SetHints(v.keymap.ResultsHelp())
}

// View renders the view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	title := "docqa · Search"
	if v.mode == ModeAsk {
		title = "docqa · Ask"
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render(title), "", v.input.View(), "")

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.err.Error()), "")
	}

	if v.mode == ModeAsk {
		sections = append(sections, v.renderAnswer())
	} else {
		sections = append(sections, v.list.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderAnswer() string {
	if v.answer == nil {
		return v.styles.Muted.Render("Answers come only from the indexed documents.")
	}

	lines := []string{v.styles.Answer.Width(max(20, v.width-4)).Render(v.answer.Answer)}
	if len(v.answer.Sources) == 0 {
		return lines[0]
	}

	lines = append(lines, "", v.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(v.answer.Sources))))
	for i := range v.answer.Sources {
		src := &v.answer.Sources[i]
		lines = append(lines, v.styles.Citation.Render(fmt.Sprintf("  [%d] %s (chunk %d/%d, distance %.3f)",
			i+1, src.Metadata.SourceFile, src.Metadata.ChunkIndex+1, src.Metadata.TotalChunks, src.Distance)))
	}
	return strings.Join(lines, "\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width, height-10) // Reserve space for header, input, status
	v.statusbar.SetWidth(width)
}

// Reset returns the view to input mode with no results.
func (v *View) Reset() {
	v.focusInput = true
	v.busy = false
	v.input.Focus()
	v.input.SetValue("")
	v.list.SetResults(nil)
	v.answer = nil
	v.err = nil
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.InputHelp())
}

// Mode returns the view mode.
func (v *View) Mode() Mode {
	return v.mode
}

// Query returns the current query text.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the query text.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Results returns the current search results.
func (v *View) Results() []domain.ScoredCandidate {
	return v.list.Results()
}

// SelectedIndex returns the index of the selected result.
func (v *View) SelectedIndex() int {
	return v.list.Selected()
}

// Answer returns the last answer, nil before one arrives.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Busy reports whether a query is in flight.
func (v *View) Busy() bool {
	return v.busy
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
