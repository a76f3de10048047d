package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/pinnhq/pinncheck/internal/checks"
)

// MockExecutor implements the runs.Executor interface for testing.
type MockExecutor struct {
	mu             sync.Mutex
	executedRuns   []*checks.Run
	outcomes       map[string][]checks.Outcome
	errs           map[string]error
	summaries      map[string]*checks.PageSummary
	delay          time.Duration
	shutdownCalled bool
	shutdownErr    error
}

func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		outcomes:  make(map[string][]checks.Outcome),
		errs:      make(map[string]error),
		summaries: make(map[string]*checks.PageSummary),
	}
}

// ExecuteRun implements the Executor interface. Without a stubbed result it
// reports every check as observed.
func (m *MockExecutor) ExecuteRun(run *checks.Run) ([]checks.Outcome, error) {
	m.mu.Lock()
	m.executedRuns = append(m.executedRuns, run)
	delay := m.delay
	stubbed, ok := m.outcomes[run.ID.String()]
	err := m.errs[run.ID.String()]
	summary := m.summaries[run.ID.String()]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if summary != nil {
		run.Summary = summary
	}
	if ok {
		return stubbed, err
	}

	outcomes := make([]checks.Outcome, 0, len(run.Checks))
	for _, check := range run.Checks {
		outcomes = append(outcomes, checks.Outcome{Check: check, Observed: true})
	}
	return outcomes, err
}

// Shutdown implements the Executor interface.
func (m *MockExecutor) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownCalled = true
	return m.shutdownErr
}

// SetResult stubs the outcomes and error returned for a run ID.
func (m *MockExecutor) SetResult(runID string, outcomes []checks.Outcome, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[runID] = outcomes
	m.errs[runID] = err
}

// SetSummary stubs the page summary the executor writes onto the run.
func (m *MockExecutor) SetSummary(runID string, summary *checks.PageSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[runID] = summary
}

// SetDelay makes ExecuteRun block, to observe in-flight run status.
func (m *MockExecutor) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetShutdownError sets the error returned from Shutdown.
func (m *MockExecutor) SetShutdownError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdownErr = err
}

// ExecutedRuns returns the runs handed to the executor so far.
func (m *MockExecutor) ExecutedRuns() []*checks.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*checks.Run(nil), m.executedRuns...)
}

// WasShutdownCalled reports whether Shutdown was invoked.
func (m *MockExecutor) WasShutdownCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shutdownCalled
}
