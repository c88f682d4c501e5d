// Package cli provides the docqa command-line interface built on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/app"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

var (
	verbose   bool
	configDir string
	ephemeral bool
)

// Services used by the commands. Set lazily from the application or by
// SetServices in tests.
var (
	settingsService  driving.SettingsService
	retrievalService driving.RetrievalService
	answerService    driving.AnswerService
	ingestionService driving.IngestionService
	checkFunc        func(ctx context.Context) error

	currentApp *app.App
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask questions about your developer documentation",
	Long: `docqa indexes a directory of developer documents (PDF, Markdown, text, DOCX)
and answers natural-language questions from them.

Documents are split into overlapping chunks and embedded into a vector store.
Queries are ranked by fusing vector similarity with keyword coverage.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.docqa)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false,
		"keep settings and vectors in memory for this run only")
}

// Services bundles the core services driven by the CLI.
type Services struct {
	Settings  driving.SettingsService
	Retrieval driving.RetrievalService
	Answer    driving.AnswerService
	Ingestion driving.IngestionService

	// Check verifies the configured providers and store. Optional.
	Check func(ctx context.Context) error
}

// SetServices replaces the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	retrievalService = s.Retrieval
	answerService = s.Answer
	ingestionService = s.Ingestion
	checkFunc = s.Check
}

// Execute loads .env, runs the root command and releases the application.
func Execute(ctx context.Context) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Reading .env: %v", err)
	}

	defer closeApp()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func appOptions() app.Options {
	return app.Options{ConfigDir: configDir, Ephemeral: ephemeral}
}

func initSettings() error {
	if settingsService != nil {
		return nil
	}
	svc, err := app.NewSettingsService(appOptions())
	if err != nil {
		return err
	}
	settingsService = svc
	return nil
}

// loadServices assembles the application on first use.
func loadServices(ctx context.Context) error {
	if retrievalService != nil {
		return nil
	}
	if err := initSettings(); err != nil {
		return err
	}

	a, err := app.New(ctx, appOptions(), settingsService)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	currentApp = a
	SetServices(&Services{
		Settings:  settingsService,
		Retrieval: a.Retrieval,
		Answer:    a.Answer,
		Ingestion: a.Ingestion,
		Check:     a.Check,
	})
	return nil
}

func closeApp() {
	if currentApp == nil {
		return
	}
	if err := currentApp.Close(); err != nil {
		logger.Warn("Closing: %v", err)
	}
	currentApp = nil
}

// commandContext returns the command context, falling back to Background
// when the command is run without ExecuteContext.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
