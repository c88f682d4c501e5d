package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// styled reports whether the command writes to a terminal.
func styled(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func title(cmd *cobra.Command, s string) string {
	if styled(cmd) {
		return titleStyle.Render(s)
	}
	return s
}

func dim(cmd *cobra.Command, s string) string {
	if styled(cmd) {
		return dimStyle.Render(s)
	}
	return s
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// formatSize renders a byte count with a binary unit.
func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// resolveMaxResults returns n when positive, else the configured default.
func resolveMaxResults(n int) int {
	if n > 0 {
		return n
	}
	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && settings.MaxResults > 0 {
			return settings.MaxResults
		}
	}
	return domain.DefaultMaxResults
}

// resolveDocumentsDir returns the first argument or the configured directory.
func resolveDocumentsDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	return settings.DocumentsDir, nil
}
