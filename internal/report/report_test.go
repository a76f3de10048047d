package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinnhq/pinncheck/internal/checks"
)

func onboardingRun() *checks.Run {
	run := checks.NewRun("http://localhost:5173", []checks.Check{
		{Kind: checks.KindNavigate, Value: "http://localhost:5173"},
		{Kind: checks.KindScreenshot, Value: "initial_load.png"},
		{Kind: checks.KindTextVisible, Value: "Welcome to Pinn"},
	}, nil)
	return run
}

func TestWriteConsole_OnboardingSeen(t *testing.T) {
	run := onboardingRun()
	run.Finish([]checks.Outcome{
		{Check: run.Checks[0], Observed: true},
		{Check: run.Checks[1], Observed: true, Message: "screenshot written to verification/initial_load.png"},
		{Check: run.Checks[2], Observed: true, Message: "Onboarding visible"},
	}, nil)

	var buf bytes.Buffer
	WriteConsole(&buf, run)

	out := buf.String()
	assert.Contains(t, out, "Onboarding visible")
	assert.Contains(t, out, "screenshot written to verification/initial_load.png")
	assert.Contains(t, out, "completed")
}

func TestWriteConsole_OnboardingMissing(t *testing.T) {
	run := onboardingRun()
	run.Finish([]checks.Outcome{
		{Check: run.Checks[0], Observed: true},
		{Check: run.Checks[1], Observed: true, Message: "screenshot written to verification/initial_load.png"},
		{Check: run.Checks[2], Observed: false, Message: "Not on onboarding?"},
	}, nil)

	var buf bytes.Buffer
	WriteConsole(&buf, run)

	out := buf.String()
	assert.Contains(t, out, "Not on onboarding?")
	assert.Contains(t, out, "completed")
	assert.NotContains(t, out, "failed")
}

func TestWriteConsole_FailedRun(t *testing.T) {
	run := onboardingRun()
	run.Finish([]checks.Outcome{
		{Check: run.Checks[0], Error: "net::ERR_CONNECTION_REFUSED"},
	}, errors.New("check 0 (navigate) failed: net::ERR_CONNECTION_REFUSED"))

	var buf bytes.Buffer
	WriteConsole(&buf, run)

	out := buf.String()
	assert.Contains(t, out, "FAIL navigate")
	assert.Contains(t, out, "failed")
	assert.NotContains(t, out, "completed")
}

func TestWriteConsole_IncludesPageTitle(t *testing.T) {
	run := onboardingRun()
	run.Summary = &checks.PageSummary{Title: "Pinn"}
	run.Finish(nil, nil)

	var buf bytes.Buffer
	WriteConsole(&buf, run)
	assert.Contains(t, buf.String(), "page title: Pinn")
}

func TestJSON(t *testing.T) {
	run := onboardingRun()
	run.Finish(nil, nil)

	data, err := JSON(run)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, run.ID.String(), decoded["id"])
	assert.Equal(t, "completed", decoded["status"])
}
