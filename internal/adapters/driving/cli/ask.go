package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	askLimit int
	askJSON  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Selects the most relevant chunks (relevance above 0.5) and asks the
configured LLM to answer using only that context.

Requires an LLM provider; see 'docqa settings llm'.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of context chunks (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	answer, err := answerService.Ask(ctx, domain.Query{
		Question:   args[0],
		MaxResults: resolveMaxResults(askLimit),
	})
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return fmt.Errorf("%w: configure one with 'docqa settings llm'", err)
	}
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, answer)
	}

	cmd.Println(answer.Answer)
	cmd.Println()
	cmd.Println(dim(cmd, fmt.Sprintf("Confidence: %.2f", answer.Confidence)))
	if len(answer.Sources) > 0 {
		cmd.Println(title(cmd, "Sources:"))
		for i := range answer.Sources {
			s := &answer.Sources[i]
			cmd.Printf("  [%d] %s (chunk %d/%d, distance %.3f)\n", i+1,
				s.Metadata.SourceFile, s.Metadata.ChunkIndex+1, s.Metadata.TotalChunks, s.Distance)
		}
	}
	return nil
}
