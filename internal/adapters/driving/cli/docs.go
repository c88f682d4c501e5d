package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var docsJSON bool

var docsCmd = &cobra.Command{
	Use:   "docs [dir]",
	Short: "List the supported files in the documents directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDocs,
}

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output the inventory as JSON")
	rootCmd.AddCommand(docsCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	dir, err := resolveDocumentsDir(args)
	if err != nil {
		return err
	}

	inventory, err := ingestionService.Inventory(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if docsJSON {
		return printJSON(cmd, inventory)
	}

	if len(inventory.Files) == 0 {
		cmd.Printf("No documents in %s.\n", inventory.Directory)
		return nil
	}

	cmd.Println(title(cmd, fmt.Sprintf("Documents in %s:", inventory.Directory)))
	for _, f := range inventory.Files {
		cmd.Printf("  %-40s %10s  %s\n", f.Name, formatSize(f.Size), dim(cmd, f.ModifiedAt.Format("2006-01-02 15:04")))
	}
	cmd.Printf("\n%d files, %s total\n", len(inventory.Files), formatSize(inventory.TotalSize))
	return nil
}
