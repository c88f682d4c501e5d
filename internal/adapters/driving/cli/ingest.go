package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

var (
	ingestWatch bool
	ingestJSON  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index the documents directory",
	Long: `Loads every supported document (.pdf, .txt, .md, .docx) in the directory,
splits it into overlapping chunks, embeds them and stores them.

The directory defaults to documents.dir and is created when missing.
Documents that fail to load are reported and skipped.

With --watch, ingestion re-runs whenever a supported file changes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when files change")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	dir, err := resolveDocumentsDir(args)
	if err != nil {
		return err
	}

	report, err := ingestionService.Ingest(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if err := outputReport(cmd, report); err != nil {
		return err
	}

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", dir)
	return ingestionService.Watch(ctx, dir, func(report *domain.IngestReport, err error) {
		if err != nil {
			cmd.PrintErrf("Ingestion failed: %v\n", err)
			return
		}
		_ = outputReport(cmd, report) //nolint:errcheck // best effort while watching
	})
}

func outputReport(cmd *cobra.Command, report *domain.IngestReport) error {
	if ingestJSON {
		failures := make(map[string]string)
		for _, f := range report.Failed() {
			failures[f.FilePath] = f.Err.Error()
		}
		return printJSON(cmd, map[string]any{
			"message":         report.Message(),
			"processed_files": report.ProcessedFiles(),
			"total_chunks":    report.TotalChunks,
			"failures":        failures,
		})
	}

	cmd.Println(report.Message())
	for _, d := range report.Documents {
		if d.OK() {
			cmd.Printf("  %s: %d chunks\n", d.SourceFile, d.Chunks)
		} else {
			cmd.Printf("  %s: %s\n", d.SourceFile, dim(cmd, d.Err.Error()))
		}
	}
	return nil
}
