package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/electionwatch/candidate-dashboard/internal/config"
	"github.com/electionwatch/candidate-dashboard/internal/ingestion"
	"github.com/electionwatch/candidate-dashboard/internal/logging"
	"github.com/electionwatch/candidate-dashboard/internal/server"
	"github.com/electionwatch/candidate-dashboard/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:           "dashboard",
	Short:         "Candidate post sentiment dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads and validates configuration, installs the logger and opens
// the configured data store
func setup() (*config.Config, storage.Source, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logging.InitLogger(cfg.LogLevel)

	src, err := storage.NewSource(cfg.Storage)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return cfg, src, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, src, err := setup()
	if err != nil {
		return err
	}
	defer src.Close()

	// The dashboard still starts when the store is down; pages show the
	// unavailable message until a refresh succeeds.
	pingCtx, pingCancel := context.WithTimeout(cmd.Context(), cfg.Storage.Timeout)
	if err := src.Ping(pingCtx); err != nil {
		slog.Warn("[Main] Data store not reachable at startup", slog.String("type", cfg.Storage.Type), slog.String("error", err.Error()))
	}
	pingCancel()

	service := ingestion.NewService(cfg.Cache, src)
	httpServer := server.NewServer(cfg.Server, cfg.Dashboard, service)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		slog.Info("[Main] Starting HTTP server", slog.Int("port", cfg.Server.Port), slog.String("storage", cfg.Storage.Type))
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		slog.Info("[Main] Shutdown signal received, gracefully shutting down...")
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("[Main] HTTP server shutdown error", slog.String("error", err.Error()))
	}

	slog.Info("[Main] Shutdown complete")
	return nil
}
