package monitoring

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()

	m.RunStarted()
	m.RunFinished("completed", 1500*time.Millisecond)
	m.CheckExecuted("navigate", "ok")
	m.CheckExecuted("text_visible", "missing")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `pinncheck_runs_total{status="completed"} 1`)
	assert.Contains(t, out, `pinncheck_checks_total{kind="navigate",result="ok"} 1`)
	assert.Contains(t, out, `pinncheck_checks_total{kind="text_visible",result="missing"} 1`)
	assert.Contains(t, out, "pinncheck_runs_active 0")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide; each test can own one.
	a := NewMetrics()
	b := NewMetrics()
	a.RunStarted()
	b.RunStarted()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "pinncheck_runs_active 1")
}
