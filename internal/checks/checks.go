package checks

import (
	"time"

	"github.com/google/uuid"
)

// Run status constants
type RunStatus string

const (
	StatusPending   RunStatus = "pending"
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Check kind constants
type Kind string

const (
	KindNavigate       Kind = "navigate"
	KindSleep          Kind = "sleep"
	KindScreenshot     Kind = "screenshot"
	KindTextVisible    Kind = "text_visible"
	KindWaitVisible    Kind = "wait_visible"
	KindWaitHidden     Kind = "wait_hidden"
	KindElementPresent Kind = "element_present"
	KindClick          Kind = "click"
	KindType           Kind = "type"
	KindEval           Kind = "eval"
	KindLogin          Kind = "login"
)

// Check is a single verification step. Navigational and interaction kinds
// fail the run when they error; probe kinds (text_visible, element_present)
// only record what they observed.
type Check struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`

	// Optional probe messages. When set they replace the generic outcome
	// wording, so a suite can speak in its own domain terms.
	OnSeen    string `json:"on_seen,omitempty" yaml:"onSeen,omitempty"`
	OnMissing string `json:"on_missing,omitempty" yaml:"onMissing,omitempty"`
}

// IsProbe reports whether the check observes page state rather than acting on it.
func (c Check) IsProbe() bool {
	return c.Kind == KindTextVisible || c.Kind == KindElementPresent
}

// Credentials for login checks. Never serialized.
type Credentials struct {
	Username   string `json:"-" yaml:"username"`
	Password   string `json:"-" yaml:"password"`
	TOTPSecret string `json:"-" yaml:"totpSecret"`
}

// Outcome records the result of one executed check.
type Outcome struct {
	Check    Check  `json:"check"`
	Observed bool   `json:"observed"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PageSummary holds what was extracted from the captured DOM snapshot.
type PageSummary struct {
	Title    string   `json:"title,omitempty"`
	Headings []string `json:"headings,omitempty"`
}

// Run is one verification pass against a target.
type Run struct {
	ID          uuid.UUID    `json:"id"`
	Target      string       `json:"target"`
	Status      RunStatus    `json:"status"`
	Checks      []Check      `json:"checks"`
	Credentials *Credentials `json:"-"`
	Outcomes    []Outcome    `json:"outcomes,omitempty"`
	Summary     *PageSummary `json:"summary,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	FinishedAt  *time.Time   `json:"finished_at,omitempty"`
}

func NewRun(target string, cks []Check, creds *Credentials) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:          uuid.New(),
		Target:      target,
		Status:      StatusPending,
		Checks:      cks,
		Credentials: creds,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateStatus sets the status and bumps the timestamp. On terminal states it
// also stamps FinishedAt.
func (r *Run) UpdateStatus(status RunStatus) {
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	if status == StatusCompleted || status == StatusFailed {
		t := r.UpdatedAt
		r.FinishedAt = &t
	}
}

// Finish records the outcomes and final status in one step.
func (r *Run) Finish(outcomes []Outcome, err error) {
	r.Outcomes = outcomes
	if err != nil {
		r.Error = err.Error()
		r.UpdateStatus(StatusFailed)
		return
	}
	r.UpdateStatus(StatusCompleted)
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.CreatedAt)
}
