package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pinnhq/pinncheck/internal/checks"
)

func TestBuildAction_Navigate(t *testing.T) {
	action, err := BuildAction(checks.Check{
		Kind:  checks.KindNavigate,
		Value: "http://localhost:5173",
	}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_NavigateRequiresURL(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: checks.KindNavigate}, nil)
	assert.Error(t, err)
}

func TestBuildAction_Sleep(t *testing.T) {
	action, err := BuildAction(checks.Check{
		Kind:  checks.KindSleep,
		Value: "2s",
	}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_SleepRejectsBadDuration(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: checks.KindSleep, Value: "soon"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestBuildAction_WaitVisible(t *testing.T) {
	action, err := BuildAction(checks.Check{
		Kind:     checks.KindWaitVisible,
		Selector: "#app",
	}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_ClickRequiresSelector(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: checks.KindClick}, nil)
	assert.Error(t, err)
}

func TestBuildAction_Type(t *testing.T) {
	action, err := BuildAction(checks.Check{
		Kind:     checks.KindType,
		Selector: "input[name='folder']",
		Value:    "notes",
	}, nil)
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_EvalRequiresScript(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: checks.KindEval}, nil)
	assert.Error(t, err)
}

func TestBuildAction_LoginRequiresCredentials(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: checks.KindLogin}, nil)
	assert.Error(t, err)

	_, err = BuildAction(checks.Check{Kind: checks.KindLogin}, &checks.Credentials{Username: "user"})
	assert.Error(t, err)
}

func TestBuildAction_LoginWithCredentials(t *testing.T) {
	action, err := BuildAction(checks.Check{Kind: checks.KindLogin}, &checks.Credentials{
		Username: "user",
		Password: "pass",
	})
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_LoginWithTOTP(t *testing.T) {
	action, err := BuildAction(checks.Check{Kind: checks.KindLogin}, &checks.Credentials{
		Username:   "user",
		Password:   "pass",
		TOTPSecret: "JBSWY3DPEHPK3PXP",
	})
	assert.NoError(t, err)
	assert.NotNil(t, action)
}

func TestBuildAction_UnknownKind(t *testing.T) {
	_, err := BuildAction(checks.Check{Kind: "teleport"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown check kind")
}
