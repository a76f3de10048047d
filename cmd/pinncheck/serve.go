package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pinnhq/pinncheck/internal/browser"
	"github.com/pinnhq/pinncheck/internal/config"
	"github.com/pinnhq/pinncheck/internal/history"
	"github.com/pinnhq/pinncheck/internal/logging"
	"github.com/pinnhq/pinncheck/internal/monitoring"
	"github.com/pinnhq/pinncheck/internal/runs"
	"github.com/pinnhq/pinncheck/internal/server"
)

// NewServeCmd creates the serve command: the verification runner behind an
// HTTP API.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the verification runner over HTTP",
		Long: `Serve starts an HTTP API that accepts verification runs, executes them
against the configured target, and reports their outcomes. Finished runs are
recorded in the history database when history is enabled.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := cfg.Log.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		logLevel = flagLevel
	}
	log, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	mgr, err := browser.NewManager(&cfg.Browser, &cfg.Artifacts, log)
	if err != nil {
		return fmt.Errorf("failed to start browser manager: %w", err)
	}

	var store *history.Store
	var recorder runs.Recorder
	var histReader server.HistoryReader
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.Dir, history.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer store.Close()
		recorder = store
		histReader = store
	}

	metrics := monitoring.NewMetrics()
	runManager := runs.NewManager(mgr, recorder, metrics, log)
	handler := server.NewAPIHandler(runManager, histReader, cfg, log)
	srv := server.NewServer(cfg, handler, metrics, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var startErr error
	select {
	case startErr = <-errCh:
	case sig := <-sigCh:
		log.Infow("received signal, shutting down", "signal", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Browser.ShutdownTimeout)
	defer cancel()

	if startErr == nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("server shutdown incomplete", "error", err)
		}
	}
	// The browser allocator is released even when the server never started.
	if err := mgr.Shutdown(shutdownCtx); err != nil {
		log.Warnw("browser shutdown incomplete", "error", err)
	}
	return startErr
}
