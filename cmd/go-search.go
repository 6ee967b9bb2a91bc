package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adfharrison1/go-search/pkg/config"
	"github.com/adfharrison1/go-search/pkg/logger"
	"github.com/adfharrison1/go-search/pkg/server"
)

var rootCmd = &cobra.Command{
	Use:   "go-search",
	Short: "Document store with an asynchronous update queue",
	Long: `go-search serves the document API of a search engine index store.

Document additions, deletions and clears are queued and applied in order per
index; every mutation answers 202 with an update id.

Examples:
  go-search                                  # Start with defaults
  go-search --port 9090 --data-dir /tmp/gs   # Custom port and data directory
  go-search --background-save 5m             # Snapshot every 5 minutes
  go-search --config go-search.yaml          # Load a YAML config file

Safety Note:
  Without --background-save, data is only saved on graceful shutdown.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringP("config", "c", "", "Path to a YAML config file")
	flags.StringP("port", "p", config.DefaultPort, "Server port")
	flags.String("data-dir", config.DefaultDataDir, "Directory for the snapshot and update spool")
	flags.Duration("background-save", 0, "Background save interval (e.g., 5m, 30s). Set to 0 to disable.")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
}

// applyFlags overrides cfg with every flag set on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("port") {
		if cfg.Server.Port, err = flags.GetString("port"); err != nil {
			return err
		}
	}
	if flags.Changed("data-dir") {
		derivedSpool := filepath.Join(cfg.Storage.DataDir, "updates")
		if cfg.Storage.DataDir, err = flags.GetString("data-dir"); err != nil {
			return err
		}
		// spool follows the data directory unless configured explicitly
		if cfg.Updates.SpoolDir == derivedSpool {
			cfg.Updates.SpoolDir = ""
		}
	}
	if flags.Changed("background-save") {
		if cfg.Storage.BackgroundSave, err = flags.GetDuration("background-save"); err != nil {
			return err
		}
	}
	if flags.Changed("log-level") {
		if cfg.Logging.Level, err = flags.GetString("log-level"); err != nil {
			return err
		}
	}
	cfg.SetDefaults()
	return cfg.Validate()
}

func runServe(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("getting config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	srv, err := server.NewServer(cfg, log)
	if err != nil {
		return err
	}

	httpServer := srv.HTTPServer()

	// Start server in a goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting go-search server",
			logger.String("port", cfg.Server.Port),
			logger.String("data_dir", cfg.Storage.DataDir))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", logger.String("signal", sig.String()))
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", logger.Error(err))
		}
	}

	// Give outstanding requests and queued updates a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(ctx)
	if shutdownErr != nil {
		log.Error("Server forced to shutdown", logger.Error(shutdownErr))
	}
	if err := srv.Close(ctx); err != nil {
		return err
	}

	log.Info("Server exited")
	return shutdownErr
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
