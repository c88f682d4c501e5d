package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every indexed chunk",
	Long: `Removes every chunk from the vector store. Documents on disk are untouched.
Run 'docqa ingest' to rebuild the index.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	if !clearYes {
		cmd.Print("Remove all indexed chunks? [y/N]: ")
		answer := strings.ToLower(readLine(bufio.NewReader(cmd.InOrStdin())))
		if answer != "y" && answer != "yes" {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := ingestionService.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear: %w", err)
	}
	cmd.Println("All documents cleared successfully.")
	return nil
}
