package cli

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/adapters/driving/api"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the JSON API under /api/v1:

  GET    /api/v1/health             store and model status
  POST   /api/v1/upload-documents   ingest the documents directory
  POST   /api/v1/ask                {"question": "...", "max_results": 5}
  POST   /api/v1/search             {"question": "...", "max_results": 5}
  GET    /api/v1/documents/info     documents directory inventory
  GET    /api/v1/search/statistics  collection and ranking statistics
  DELETE /api/v1/documents/clear    remove every indexed chunk

Host and port default to server.host and server.port.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from settings)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from settings)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	if err := loadServices(ctx); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	host, port := settings.Server.Host, settings.Server.Port
	if serveHost != "" {
		host = serveHost
	}
	if servePort > 0 {
		port = servePort
	}

	server, err := api.NewServer(&api.Ports{
		Retrieval:    retrievalService,
		Ingestion:    ingestionService,
		Answer:       answerService,
		DocumentsDir: settings.DocumentsDir,
		MaxResults:   settings.MaxResults,
		Version:      version,
	})
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	if err := server.Start(addr); err != nil {
		return err
	}
	cmd.Printf("API listening on http://%s%s\n", server.Addr(), api.Prefix)
	cmd.Printf("Documents directory: %s\n", settings.DocumentsDir)

	<-ctx.Done()
	cmd.Println("Shutting down...")
	return server.Stop()
}
