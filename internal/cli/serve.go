package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/storedeck/storedeck/internal/comms"
	"github.com/storedeck/storedeck/internal/config"
	"github.com/storedeck/storedeck/internal/server"
	"github.com/storedeck/storedeck/internal/store"
)

var port int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the storedeck HTTP server.

The server provides:
  - Admin API for tests, analytics, settings, contractors, and communications
  - Storefront read API for products and reviews
  - Beacon endpoint for tracking A/B test events
  - SSE stream for video job status

Example:
  storedeck serve --port 8080`,
	RunE: runServe,
}

func init() {
	defaultPort := 8080
	if p := os.Getenv("STOREDECK_PORT"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil {
			defaultPort = parsed
		}
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", defaultPort, "port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Flags beat config file and env.
	if cmd.Flags().Changed("db") || cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = dbPath
	}
	if f := cmd.Flags().Lookup("port"); f != nil && f.Changed {
		cfg.Server.Port = port
	}

	s, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer s.Close()

	drainInterval := time.Duration(cfg.Comms.DrainIntervalSeconds) * time.Second
	commsSvc := comms.NewService(s, &comms.LogSender{Logger: logger}, logger, drainInterval)
	commsSvc.Start()
	defer commsSvc.Stop()

	srv, err := server.New(s, commsSvc, logger, cfg.Server.Port, cfg.Server.Token)
	if err != nil {
		return err
	}
	return srv.Start()
}
