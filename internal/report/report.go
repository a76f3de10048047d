// Package report renders finished runs for the CLI and for API callers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pinnhq/pinncheck/internal/checks"
)

// WriteConsole prints a human-readable account of a run: one line per
// outcome that has something to say, then the terminal status.
func WriteConsole(w io.Writer, run *checks.Run) {
	for _, outcome := range run.Outcomes {
		switch {
		case outcome.Error != "":
			fmt.Fprintf(w, "FAIL %s: %s\n", outcome.Check.Kind, outcome.Error)
		case outcome.Message != "":
			fmt.Fprintln(w, outcome.Message)
		}
	}

	if run.Summary != nil && run.Summary.Title != "" {
		fmt.Fprintf(w, "page title: %s\n", run.Summary.Title)
	}

	if run.Status == checks.StatusFailed {
		fmt.Fprintf(w, "run %s failed: %s\n", run.ID, run.Error)
		return
	}
	fmt.Fprintf(w, "run %s completed in %s\n", run.ID, run.Duration().Round(time.Millisecond))
}

// JSON renders the run as indented JSON for machine consumers.
func JSON(run *checks.Run) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}
