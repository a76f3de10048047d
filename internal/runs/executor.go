package runs

import (
	"context"

	"github.com/pinnhq/pinncheck/internal/checks"
)

// Executor runs the browser side of a verification run. The interface
// decouples the run manager from the chromedp implementation so it can be
// mocked in tests.
type Executor interface {
	// ExecuteRun walks the run's checks in a fresh browser context and
	// returns the per-check outcomes. A non-nil error means the run was
	// aborted at the last returned outcome.
	ExecuteRun(run *checks.Run) ([]checks.Outcome, error)

	// Shutdown releases browser resources, waiting for active runs until
	// the context expires.
	Shutdown(ctx context.Context) error
}

// Recorder persists finished runs. The history store satisfies this; a nil
// recorder disables persistence.
type Recorder interface {
	RecordRun(ctx context.Context, run *checks.Run) error
}
