// Package documents provides the documents view for the TUI: the
// documents directory listing, collection statistics and ingestion.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrNoIngestionService is returned when the view has no ingestion service.
var ErrNoIngestionService = errors.New("ingestion service not available")

// View is the documents view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	ingestion driving.IngestionService
	retrieval driving.RetrievalService
	dir       string
	ctx       context.Context

	inventory *domain.Inventory
	stats     *domain.Stats
	report    *domain.IngestReport

	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	busy         bool
	err          error
}

// NewView creates a new documents view for dir.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	ingestion driving.IngestionService,
	retrieval driving.RetrievalService,
	dir string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:    s,
		keymap:    km,
		statusbar: status.NewBar(s),
		ingestion: ingestion,
		retrieval: retrieval,
		dir:       dir,
		ctx:       context.Background(),
		width:     80,
		height:    24,
	}
	v.statusbar.SetHints(km.DocumentsHelp())
	return v
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the inventory and statistics.
func (v *View) Init() tea.Cmd {
	return v.Refresh()
}

// Refresh reloads the inventory and statistics.
func (v *View) Refresh() tea.Cmd {
	v.err = nil
	if v.statusbar.State() == status.StateError {
		v.statusbar.Clear()
	}
	return tea.Batch(v.loadInventory(), v.loadStats())
}

func (v *View) loadInventory() tea.Cmd {
	ingestion, dir, ctx := v.ingestion, v.dir, v.ctx
	return func() tea.Msg {
		if ingestion == nil {
			return messages.InventoryLoaded{Err: ErrNoIngestionService}
		}
		inv, err := ingestion.Inventory(ctx, dir)
		return messages.InventoryLoaded{Inventory: inv, Err: err}
	}
}

func (v *View) loadStats() tea.Cmd {
	retrieval, ctx := v.retrieval, v.ctx
	if retrieval == nil {
		return nil
	}
	return func() tea.Msg {
		stats, err := retrieval.Stats(ctx)
		return messages.StatsLoaded{Stats: stats, Err: err}
	}
}

func (v *View) ingest() tea.Cmd {
	v.busy = true
	v.err = nil
	ingestion, dir, ctx := v.ingestion, v.dir, v.ctx
	return tea.Batch(v.statusbar.Start("Ingesting "+dir+"..."), func() tea.Msg {
		if ingestion == nil {
			return messages.IngestCompleted{Err: ErrNoIngestionService}
		}
		report, err := ingestion.Ingest(ctx, dir)
		return messages.IngestCompleted{Report: report, Err: err}
	})
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.InventoryLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.inventory = msg.Inventory
		v.selected = 0
		v.scrollOffset = 0
		return v, nil

	case messages.StatsLoaded:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.stats = msg.Stats
		return v, nil

	case messages.IngestCompleted:
		v.busy = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.report = msg.Report
		v.statusbar.SetState(status.StateResults)
		v.statusbar.SetMessage(msg.Report.Message())
		return v, v.Refresh()
	}

	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.busy {
		return v, nil
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Ingest):
		return v, v.ingest()
	case keymap.Matches(msg.String(), v.keymap.Refresh):
		return v, v.Refresh()
	case keymap.Matches(msg.String(), v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			if v.selected < v.scrollOffset {
				v.scrollOffset = v.selected
			}
		}
	case keymap.Matches(msg.String(), v.keymap.Down):
		if v.inventory != nil && v.selected < len(v.inventory.Files)-1 {
			v.selected++
			if visible := v.visibleRows(); v.selected >= v.scrollOffset+visible {
				v.scrollOffset = v.selected - visible + 1
			}
		}
	}
	return v, nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func (v *View) visibleRows() int {
	return max(1, v.height-14)
}

// View renders the documents view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{
		v.styles.Title.Render("docqa · Documents"),
		v.styles.Muted.Render(v.dir),
		"",
		v.renderStats(),
		"",
		v.renderFiles(),
	}

	if v.report != nil {
		sections = append(sections, "", v.renderReport())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderStats() string {
	if v.stats == nil {
		return v.styles.Muted.Render("No collection statistics.")
	}
	c := v.stats.Collection
	return fmt.Sprintf("%s %s (%s)  %s %d chunks  %s %s",
		v.styles.Subtitle.Render("Collection"), c.Name, c.Backend,
		v.styles.Subtitle.Render("Stored"), c.Count,
		v.styles.Subtitle.Render("Embedding"), v.stats.EmbeddingModel)
}

func (v *View) renderFiles() string {
	if v.inventory == nil {
		return v.styles.Muted.Render("Loading documents...")
	}
	if len(v.inventory.Files) == 0 {
		return v.styles.Muted.Render("No documents. Add files to the directory and press i to ingest.")
	}

	var b strings.Builder
	end := min(len(v.inventory.Files), v.scrollOffset+v.visibleRows())
	for i := v.scrollOffset; i < end; i++ {
		f := v.inventory.Files[i]
		cursor, style := "  ", v.styles.Normal
		if i == v.selected {
			cursor, style = "> ", v.styles.Selected
		}
		fmt.Fprintf(&b, "%s%s  %s\n", cursor, style.Render(f.Name),
			v.styles.Muted.Render(formatSize(f.Size)+"  "+f.ModifiedAt.Format("2006-01-02 15:04")))
	}
	fmt.Fprintf(&b, "\n%s", v.styles.Muted.Render(fmt.Sprintf("%d files, %s total",
		len(v.inventory.Files), formatSize(v.inventory.TotalSize))))
	return b.String()
}

func (v *View) renderReport() string {
	failed := v.report.Failed()
	if len(failed) == 0 {
		return v.styles.Success.Render(v.report.Message())
	}
	lines := []string{v.styles.Warning.Render(v.report.Message())}
	for _, f := range failed {
		lines = append(lines, v.styles.Error.Render(fmt.Sprintf("  %s: %v", f.SourceFile, f.Err)))
	}
	return strings.Join(lines, "\n")
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Inventory returns the last loaded inventory.
func (v *View) Inventory() *domain.Inventory {
	return v.inventory
}

// Stats returns the last loaded statistics.
func (v *View) Stats() *domain.Stats {
	return v.stats
}

// Report returns the last ingestion report.
func (v *View) Report() *domain.IngestReport {
	return v.report
}

// Selected returns the selected file index.
func (v *View) Selected() int {
	return v.selected
}

// Busy reports whether ingestion is running.
func (v *View) Busy() bool {
	return v.busy
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}
