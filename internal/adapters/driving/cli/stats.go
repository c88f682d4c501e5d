package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection and search statistics",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	stats, err := retrievalService.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, stats)
	}

	cmd.Println(title(cmd, "Collection"))
	cmd.Printf("  Name: %s\n", stats.Collection.Name)
	cmd.Printf("  Chunks: %d\n", stats.Collection.Count)
	cmd.Printf("  Backend: %s\n", stats.Collection.Backend)
	if stats.Collection.Location != "" {
		cmd.Printf("  Location: %s\n", stats.Collection.Location)
	}
	cmd.Println()
	cmd.Println(title(cmd, "Search"))
	cmd.Printf("  Embedding model: %s\n", stats.EmbeddingModel)
	cmd.Printf("  Algorithm: %s\n", stats.SearchAlgorithm)
	return nil
}
