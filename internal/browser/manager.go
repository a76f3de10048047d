package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/config"
	"github.com/pinnhq/pinncheck/internal/dom"
	"github.com/pinnhq/pinncheck/internal/runs"
)

// At quality 100 chromedp captures PNG instead of JPEG, so the bytes match
// the artifact's .png name.
const screenshotQuality = 100

// Compile-time check to ensure Manager implements the interface
var _ runs.Executor = (*Manager)(nil)

// Manager owns a Chrome exec allocator for the process lifetime and hands
// out one isolated browser context per run. Runs are capped by a semaphore
// and tracked so shutdown can wait for them.
type Manager struct {
	allocatorCtx    context.Context
	allocatorCancel context.CancelFunc
	cfg             *config.BrowserConfig
	artifacts       *config.ArtifactsConfig
	log             *zap.SugaredLogger
	sem             *semaphore.Weighted
	activeRunsWg    sync.WaitGroup
}

func NewManager(cfg *config.BrowserConfig, artifacts *config.ArtifactsConfig, log *zap.SugaredLogger) (*Manager, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("mute-audio", true),
		chromedp.IgnoreCertErrors,
	)

	if cfg.ExecutablePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecutablePath))
	}
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	} else {
		// Guest mode: no persisted cookies or localStorage, so the target
		// app starts from its first-run state on every run.
		opts = append(opts, chromedp.Flag("guest", true))
	}

	allocatorCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Manager{
		allocatorCtx:    allocatorCtx,
		allocatorCancel: cancel,
		cfg:             cfg,
		artifacts:       artifacts,
		log:             log,
		sem:             semaphore.NewWeighted(int64(cfg.MaxSessions)),
	}, nil
}

// ExecuteRun implements the runs.Executor interface. It walks the run's
// checks in order inside a fresh browser context. Interaction errors stop
// the run; probe checks only record what they observed. The browser context
// is released on every exit path.
func (m *Manager) ExecuteRun(run *checks.Run) ([]checks.Outcome, error) {
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RunTimeout)
	defer cancel()

	if err := m.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire browser slot: %w", err)
	}
	defer m.sem.Release(1)

	m.activeRunsWg.Add(1)
	defer m.activeRunsWg.Done()

	browserCtx, browserCancel := chromedp.NewContext(m.allocatorCtx, chromedp.WithLogf(m.log.Debugf))
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, m.cfg.RunTimeout)
	defer runCancel()

	outcomes := make([]checks.Outcome, 0, len(run.Checks))
	for i, check := range run.Checks {
		outcome, err := m.executeCheck(runCtx, check, run.Credentials)
		outcomes = append(outcomes, outcome)
		if err != nil {
			m.log.Warnw("run aborted", "run", run.ID, "check", i, "kind", check.Kind, "error", err)
			return outcomes, fmt.Errorf("check %d (%s) failed: %w", i, check.Kind, err)
		}
	}

	if m.artifacts != nil && m.artifacts.SaveDOM {
		if err := m.captureDOM(runCtx, run); err != nil {
			// The DOM artifact is supplementary; its absence never fails a
			// run that has already produced its outcomes.
			m.log.Warnw("dom capture failed", "run", run.ID, "error", err)
		}
	}

	return outcomes, nil
}

func (m *Manager) executeCheck(ctx context.Context, check checks.Check, creds *checks.Credentials) (checks.Outcome, error) {
	outcome := checks.Outcome{Check: check}

	switch check.Kind {
	case checks.KindTextVisible:
		var visible bool
		if err := chromedp.Run(ctx, dom.TextVisibleAction(check.Value, &visible)); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Observed = visible
		outcome.Message = probeMessage(check, visible,
			fmt.Sprintf("text %q is visible", check.Value),
			fmt.Sprintf("text %q is not visible", check.Value))
		return outcome, nil

	case checks.KindElementPresent:
		var present bool
		if err := chromedp.Run(ctx, dom.ElementPresentAction(check.Selector, &present)); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Observed = present
		outcome.Message = probeMessage(check, present,
			fmt.Sprintf("element %q is present", check.Selector),
			fmt.Sprintf("element %q is not present", check.Selector))
		return outcome, nil

	case checks.KindScreenshot:
		path, err := m.writeScreenshot(ctx, check.Value)
		if err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Observed = true
		outcome.Message = fmt.Sprintf("screenshot written to %s", path)
		return outcome, nil

	default:
		action, err := BuildAction(check, creds)
		if err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		if err := chromedp.Run(ctx, action); err != nil {
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Observed = true
		return outcome, nil
	}
}

func probeMessage(check checks.Check, observed bool, seen, missing string) string {
	if observed {
		if check.OnSeen != "" {
			return check.OnSeen
		}
		return seen
	}
	if check.OnMissing != "" {
		return check.OnMissing
	}
	return missing
}

// writeScreenshot captures the full page and writes it below the artifacts
// directory. Relative names resolve against the configured directory so
// suites stay portable.
func (m *Manager) writeScreenshot(ctx context.Context, name string) (string, error) {
	var buf []byte
	if err := chromedp.Run(ctx, dom.ScreenshotAction(screenshotQuality, &buf)); err != nil {
		return "", fmt.Errorf("screenshot capture failed: %w", err)
	}

	path := m.resolveArtifactPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}
	return path, nil
}

func (m *Manager) captureDOM(ctx context.Context, run *checks.Run) error {
	var rawHTML string
	if err := chromedp.Run(ctx, dom.OuterHTMLAction(&rawHTML)); err != nil {
		return err
	}

	simplified, err := dom.Simplify(rawHTML)
	if err != nil {
		return err
	}

	path := m.resolveArtifactPath(run.ID.String() + "_dom.html")
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(simplified), 0o644); err != nil {
		return err
	}

	summary, err := dom.Summarize(rawHTML)
	if err != nil {
		return err
	}
	run.Summary = summary
	return nil
}

func (m *Manager) resolveArtifactPath(name string) string {
	if filepath.IsAbs(name) || m.artifacts == nil || m.artifacts.Dir == "" {
		return name
	}
	return filepath.Join(m.artifacts.Dir, name)
}

// Shutdown implements the runs.Executor interface.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.log.Info("shutting down browser manager")

	if m.allocatorCancel != nil {
		m.allocatorCancel()
	}

	// Wait for active ExecuteRun calls to finish or for the deadline.
	done := make(chan struct{})
	go func() {
		m.activeRunsWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.log.Info("all active browser sessions have finished")
	case <-ctx.Done():
		m.log.Warn("shutdown deadline reached while waiting for active browser sessions")
		return ctx.Err()
	}

	return nil
}
