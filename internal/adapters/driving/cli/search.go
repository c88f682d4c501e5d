package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Ranks indexed chunks against a query.

Relevance fuses vector similarity (70%) with keyword coverage (30%).
Only chunks scoring above 0.3 are returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var keywordsCmd = &cobra.Command{
	Use:   "keywords <keyword>...",
	Short: "Search indexed documents by keywords",
	Long:  `Joins the keywords with spaces and runs a normal search.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKeywords,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	keywordsCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from settings)")
	keywordsCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	results, err := retrievalService.Search(ctx, domain.Query{
		Question:   args[0],
		MaxResults: resolveMaxResults(searchLimit),
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return outputResults(cmd, results)
}

func runKeywords(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	results, err := retrievalService.SearchKeywords(ctx, args, resolveMaxResults(searchLimit))
	if err != nil {
		return fmt.Errorf("keyword search failed: %w", err)
	}

	return outputResults(cmd, results)
}

func outputResults(cmd *cobra.Command, results []domain.ScoredCandidate) error {
	if searchJSON {
		return printJSON(cmd, map[string]any{
			"results": results,
			"count":   len(results),
		})
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(title(cmd, "Results:"))
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [N] source (chunk i/n) score
		cmd.Printf("  [%d] %s (chunk %d/%d) %.2f\n", i+1,
			r.Metadata.SourceFile, r.Metadata.ChunkIndex+1, r.Metadata.TotalChunks, r.RelevanceScore)
		cmd.Printf("      %s\n", dim(cmd, fmt.Sprintf("vector %.2f, keyword %.2f", r.VectorScore, r.KeywordScore)))
		cmd.Printf("      %s\n", snippet(r.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet flattens whitespace and truncates to limit runes.
func snippet(content string, limit int) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= limit {
		return flat
	}
	return string(runes[:limit]) + "..."
}
