// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/steadihand/steadihand/internal/adapters/repository"
	service "github.com/steadihand/steadihand/internal/app"
)

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// HandleCreateSession handles POST /sessions requests.
func (h *SessionsHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	id, err := h.deps.CreateSession(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", fmt.Errorf("%s: %w", op, err))
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id})
}

// HandleSession dispatches /sessions/{id}/{action} requests.
func (h *SessionsHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	// Extract path parameters after /sessions/
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || strings.Contains(action, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch action {
	case "baseline":
		h.handleBaseline(w, r, id)
	case "complete":
		h.handleComplete(w, r, id)
	case "result":
		h.handleResult(w, r, id)
	case "series":
		h.handleSeries(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

// handleBaseline handles POST /sessions/{id}/baseline requests. It freezes
// the calibration phase into a per-finger rest centroid.
func (h *SessionsHandler) handleBaseline(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.calibrate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	baseline, counts, err := h.deps.Calibrate(r.Context(), id)
	if err != nil {
		writeSessionError(w, op, err)
		return
	}
	resp := baselineResponse{
		SessionID: id,
		Baseline:  make(map[string]pointResponse, len(baseline)),
		Samples:   make(map[string]int, len(counts)),
	}
	for finger, p := range baseline {
		resp.Baseline[string(finger)] = pointResponse{X: p.X, Y: p.Y}
	}
	for finger, n := range counts {
		resp.Samples[string(finger)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleComplete handles POST /sessions/{id}/complete requests.
func (h *SessionsHandler) handleComplete(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.complete_session"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Complete(r.Context(), id)
	if err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleResult handles GET /sessions/{id}/result requests.
func (h *SessionsHandler) handleResult(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_result"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.Result(r.Context(), id)
	if err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSeries handles GET /sessions/{id}/series requests.
func (h *SessionsHandler) handleSeries(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.get_series"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	series, err := h.deps.Series(r.Context(), id)
	if err != nil {
		writeSessionError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// writeSessionError translates upstream session errors to HTTP statuses.
func writeSessionError(w http.ResponseWriter, op string, err error) {
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, repository.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "not_found", wrapped)
	case errors.Is(err, repository.ErrSessionCompleted):
		writeError(w, http.StatusConflict, "session_completed", wrapped)
	case errors.Is(err, repository.ErrSessionNotCompleted):
		writeError(w, http.StatusConflict, "session_not_completed", wrapped)
	case errors.Is(err, service.ErrNoCalibrationData):
		writeError(w, http.StatusUnprocessableEntity, "no_calibration_data", wrapped)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", wrapped)
	}
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type pointResponse struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type baselineResponse struct {
	SessionID string                   `json:"session_id"`
	Baseline  map[string]pointResponse `json:"baseline"`
	Samples   map[string]int           `json:"samples"`
}
