package runs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/monitoring"
)

// ErrRunNotFound is returned when a run ID has no entry in the manager.
var ErrRunNotFound = errors.New("run not found")

const recordTimeout = 5 * time.Second

// Manager keeps the in-memory run table and drives asynchronous execution.
type Manager struct {
	executor Executor
	recorder Recorder
	metrics  *monitoring.Metrics
	log      *zap.SugaredLogger
	runs     map[uuid.UUID]*checks.Run
	mu       sync.RWMutex
}

// NewManager wires the run table to an executor. Recorder and metrics are
// optional; nil disables them.
func NewManager(executor Executor, recorder Recorder, metrics *monitoring.Metrics, log *zap.SugaredLogger) *Manager {
	return &Manager{
		executor: executor,
		recorder: recorder,
		metrics:  metrics,
		log:      log,
		runs:     make(map[uuid.UUID]*checks.Run),
	}
}

// SubmitRun registers the run and starts executing it in the background.
func (m *Manager) SubmitRun(run *checks.Run) error {
	if len(run.Checks) == 0 {
		return fmt.Errorf("run must contain at least one check")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run with ID %s already exists", run.ID)
	}
	m.runs[run.ID] = run

	go m.executeRun(run)
	return nil
}

// GetRun returns a copy of the run so callers never observe a run mid-update.
func (m *Manager) GetRun(id uuid.UUID) (*checks.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, exists := m.runs[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	runCopy := *run
	return &runCopy, nil
}

func (m *Manager) executeRun(run *checks.Run) {
	m.setStatus(run, checks.StatusRunning)
	if m.metrics != nil {
		m.metrics.RunStarted()
	}

	// The executor gets its own copy; it may set the DOM summary while
	// GetRun readers are copying the table entry.
	execRun := *run
	outcomes, err := m.executor.ExecuteRun(&execRun)

	m.mu.Lock()
	run.Summary = execRun.Summary
	run.Finish(outcomes, err)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.RunFinished(string(run.Status), run.Duration())
		for _, outcome := range outcomes {
			m.metrics.CheckExecuted(string(outcome.Check.Kind), checkResult(outcome))
		}
	}

	if err != nil {
		m.log.Warnw("run failed", "run", run.ID, "target", run.Target, "error", err)
	} else {
		m.log.Infow("run completed", "run", run.ID, "target", run.Target, "checks", len(outcomes))
	}

	if m.recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if recErr := m.recorder.RecordRun(ctx, run); recErr != nil {
			m.log.Warnw("failed to record run history", "run", run.ID, "error", recErr)
		}
	}
}

func (m *Manager) setStatus(run *checks.Run, status checks.RunStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run.UpdateStatus(status)
}

func checkResult(outcome checks.Outcome) string {
	switch {
	case outcome.Error != "":
		return "error"
	case outcome.Check.IsProbe() && !outcome.Observed:
		return "missing"
	default:
		return "ok"
	}
}
