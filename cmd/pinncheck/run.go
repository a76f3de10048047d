package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pinnhq/pinncheck/internal/browser"
	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/config"
	"github.com/pinnhq/pinncheck/internal/history"
	"github.com/pinnhq/pinncheck/internal/logging"
	"github.com/pinnhq/pinncheck/internal/report"
	"github.com/pinnhq/pinncheck/internal/suite"
)

// NewRunCmd creates the run command: a single synchronous verification pass.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a verification pass against the target frontend",
		Long: `Run executes one verification pass and prints the outcomes.

Without --suite it runs the built-in onboarding check. The command exits
zero whether or not the probed text is visible; only execution errors
(unreachable server, failed screenshot) produce a non-zero exit.`,
		RunE: runRun,
	}

	cmd.Flags().String("suite", "", "Path to a YAML suite file")
	cmd.Flags().String("url", "", "Target URL (overrides config)")
	cmd.Flags().String("text", "", "Probe text for the built-in suite (overrides config)")
	cmd.Flags().String("screenshot", "", "Screenshot file name (overrides config)")
	cmd.Flags().Duration("settle", 0, "Render settle delay (overrides config)")
	cmd.Flags().Bool("save-dom", false, "Also save a simplified DOM snapshot")
	cmd.Flags().Bool("json", false, "Print the run as JSON instead of text")

	return cmd
}

func runRun(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyRunFlags(cmd, cfg)

	logLevel := cfg.Log.Level
	if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
		logLevel = flagLevel
	}
	log, err := logging.New(logLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	var s *suite.Suite
	if suitePath, _ := cmd.Flags().GetString("suite"); suitePath != "" {
		s, err = suite.Load(suitePath)
		if err != nil {
			return err
		}
	} else {
		s = suite.Default(cfg.Target, cfg.Artifacts)
	}

	mgr, err := browser.NewManager(&cfg.Browser, &cfg.Artifacts, log)
	if err != nil {
		return fmt.Errorf("failed to start browser manager: %w", err)
	}
	// The browser is released on every exit path, including check failures.
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Browser.ShutdownTimeout)
		defer cancel()
		if err := mgr.Shutdown(ctx); err != nil {
			log.Warnw("browser shutdown incomplete", "error", err)
		}
	}()

	run := s.NewRun()
	log.Infow("starting run", "run", run.ID, "suite", s.Name, "target", run.Target)

	run.UpdateStatus(checks.StatusRunning)
	outcomes, execErr := mgr.ExecuteRun(run)
	run.Finish(outcomes, execErr)

	recordRun(cfg, run, log)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		data, err := report.JSON(run)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		report.WriteConsole(out, run)
	}

	if execErr != nil {
		return fmt.Errorf("verification run failed: %w", execErr)
	}
	return nil
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if url, _ := cmd.Flags().GetString("url"); url != "" {
		cfg.Target.URL = url
	}
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		cfg.Target.ProbeText = text
	}
	if shot, _ := cmd.Flags().GetString("screenshot"); shot != "" {
		cfg.Artifacts.Screenshot = shot
	}
	if settle, _ := cmd.Flags().GetDuration("settle"); settle > 0 {
		cfg.Target.SettleDelay = settle
	}
	if saveDOM, _ := cmd.Flags().GetBool("save-dom"); saveDOM {
		cfg.Artifacts.SaveDOM = true
	}
}

func recordRun(cfg *config.Config, run *checks.Run, log *zap.SugaredLogger) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.History.Dir, history.DefaultOptions())
	if err != nil {
		log.Warnw("history unavailable", "error", err)
		return
	}
	defer store.Close()
	if err := store.RecordRun(context.Background(), run); err != nil {
		log.Warnw("failed to record run history", "error", err)
	}
}
