package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/config"
	"github.com/pinnhq/pinncheck/internal/history"
	"github.com/pinnhq/pinncheck/internal/runs"
	"github.com/pinnhq/pinncheck/internal/runs/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Target: config.TargetConfig{
			URL:         "http://localhost:5173",
			ProbeText:   "Welcome to Pinn",
			SettleDelay: 2 * time.Second,
		},
		Artifacts: config.ArtifactsConfig{
			Dir:        "verification",
			Screenshot: "initial_load.png",
		},
	}
}

func newTestRouter(t *testing.T, hist HistoryReader) (*chi.Mux, *runs.Manager, *mocks.MockExecutor) {
	t.Helper()
	log := zap.NewNop().Sugar()
	mockExec := mocks.NewMockExecutor()
	manager := runs.NewManager(mockExec, nil, nil, log)
	handler := NewAPIHandler(manager, hist, testConfig(), log)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/runs", handler.HandleSubmitRun)
		r.Get("/runs", handler.HandleListRuns)
		r.Get("/runs/{runID}", handler.HandleGetRun)
	})
	return router, manager, mockExec
}

func TestHandleSubmitRun_DefaultSuite(t *testing.T) {
	router, manager, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp SubmitRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	runID, err := uuid.Parse(resp.RunID)
	require.NoError(t, err)

	run, err := manager.GetRun(runID)
	require.NoError(t, err)
	// Empty body means the built-in onboarding suite.
	assert.Equal(t, "http://localhost:5173", run.Target)
	assert.Len(t, run.Checks, 4)
}

func TestHandleSubmitRun_CustomChecks(t *testing.T) {
	router, manager, _ := newTestRouter(t, nil)

	body := SubmitRunRequest{
		Target: "http://localhost:4000",
		Checks: []checks.Check{
			{Kind: checks.KindNavigate, Value: "http://localhost:4000"},
			{Kind: checks.KindTextVisible, Value: "Dashboard"},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp SubmitRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	runID, err := uuid.Parse(resp.RunID)
	require.NoError(t, err)

	run, err := manager.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", run.Target)
	assert.Len(t, run.Checks, 2)
}

func TestHandleSubmitRun_BadJSON(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetRun_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetRun_BadID(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeHistory struct {
	records []history.Record
	err     error
}

func (f *fakeHistory) RecentRuns(_ context.Context, limit int) ([]history.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func TestHandleListRuns_NoHistory(t *testing.T) {
	router, _, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestHandleListRuns_FromHistory(t *testing.T) {
	hist := &fakeHistory{records: []history.Record{
		{ID: uuid.NewString(), Target: "http://localhost:5173", Status: "completed"},
		{ID: uuid.NewString(), Target: "http://localhost:5173", Status: "failed"},
	}}
	router, _, _ := newTestRouter(t, hist)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var records []history.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Len(t, records, 1)
}

func TestAPIKeyAuth(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := APIKeyAuth("sekret")(next)

	t.Run("missing key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "nope")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("header key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "sekret")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer sekret")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("options passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
