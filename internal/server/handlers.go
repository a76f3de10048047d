package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pinnhq/pinncheck/internal/checks"
	"github.com/pinnhq/pinncheck/internal/config"
	"github.com/pinnhq/pinncheck/internal/history"
	"github.com/pinnhq/pinncheck/internal/runs"
	"github.com/pinnhq/pinncheck/internal/suite"
)

// HistoryReader lists stored runs. Nil disables the listing endpoint's
// backing store; it then serves an empty list.
type HistoryReader interface {
	RecentRuns(ctx context.Context, limit int) ([]history.Record, error)
}

type APIHandler struct {
	runManager *runs.Manager
	hist       HistoryReader
	cfg        *config.Config
	log        *zap.SugaredLogger
}

func NewAPIHandler(rm *runs.Manager, hist HistoryReader, cfg *config.Config, log *zap.SugaredLogger) *APIHandler {
	return &APIHandler{
		runManager: rm,
		hist:       hist,
		cfg:        cfg,
		log:        log,
	}
}

type SubmitRunRequest struct {
	Target      string              `json:"target,omitempty"`
	Checks      []checks.Check      `json:"checks,omitempty"`
	Credentials *checks.Credentials `json:"credentials,omitempty"`
}

type SubmitRunResponse struct {
	RunID string `json:"run_id"`
}

// HandleSubmitRun accepts a check list, or an empty body for the default
// onboarding suite, and starts the run asynchronously.
func (h *APIHandler) HandleSubmitRun(w http.ResponseWriter, r *http.Request) {
	var req SubmitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "Invalid request body: %v", err)
		return
	}
	defer r.Body.Close()

	var run *checks.Run
	if len(req.Checks) == 0 {
		run = suite.Default(h.cfg.Target, h.cfg.Artifacts).NewRun()
	} else {
		target := req.Target
		if target == "" {
			target = h.cfg.Target.URL
		}
		run = checks.NewRun(target, req.Checks, req.Credentials)
	}

	if err := h.runManager.SubmitRun(run); err != nil {
		h.log.Warnw("failed to submit run", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to submit run: %v", err)
		return
	}

	h.log.Infow("submitted run", "run", run.ID, "target", run.Target)
	h.respondJSON(w, http.StatusAccepted, SubmitRunResponse{RunID: run.ID.String()})
}

func (h *APIHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	runIDStr := chi.URLParam(r, "runID")
	runID, err := uuid.Parse(runIDStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid run ID format: %v", err)
		return
	}

	run, err := h.runManager.GetRun(runID)
	if err != nil {
		if errors.Is(err, runs.ErrRunNotFound) {
			h.respondError(w, http.StatusNotFound, "Run not found")
		} else {
			h.log.Warnw("failed to retrieve run", "run", runIDStr, "error", err)
			h.respondError(w, http.StatusInternalServerError, "Failed to retrieve run")
		}
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// HandleListRuns returns recent runs from history, newest first.
func (h *APIHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.hist == nil {
		h.respondJSON(w, http.StatusOK, []history.Record{})
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	records, err := h.hist.RecentRuns(r.Context(), limit)
	if err != nil {
		h.log.Warnw("failed to list runs", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *APIHandler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Warnw("failed to marshal JSON response", "error", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to marshal JSON response")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		h.log.Warnw("failed to write JSON response", "error", err)
	}
}

func (h *APIHandler) respondError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	errorMessage := fmt.Sprintf(format, args...)
	jsonResponse, err := json.Marshal(map[string]string{"error": errorMessage})
	if err != nil {
		h.log.Warnw("failed to marshal JSON error response", "error", err)
		jsonResponse = []byte(fmt.Sprintf(`{"error":%q}`, errorMessage))
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, writeErr := w.Write(jsonResponse); writeErr != nil {
		h.log.Warnw("failed to write error response", "error", writeErr)
	}
}
