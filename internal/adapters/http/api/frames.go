// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// FramesHandler handles capture frame ingest requests.
type FramesHandler struct {
	deps Dependencies
}

// NewFramesHandler creates a new frames handler.
func NewFramesHandler(deps Dependencies) *FramesHandler {
	return &FramesHandler{deps: deps}
}

// HandlePostFrame handles POST /frames requests.
func (h *FramesHandler) HandlePostFrame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_frame"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req frameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.FrameID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Try to enqueue for async recording
	if ok := h.deps.Enqueue(r.Context(), req.toBatch()); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.FrameID)
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}

// frameRequest mirrors the OpenAPI schema for POST /frames. One frame carries
// the landmark positions of every tracked finger at a single capture instant.
type frameRequest struct {
	FrameID   string                `json:"frame_id"`
	SessionID string                `json:"session_id"`
	Phase     string                `json:"phase"`
	T         float64               `json:"t"`
	Points    map[string]framePoint `json:"points"`
}

type framePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (f frameRequest) validate() error {
	switch {
	case strings.TrimSpace(f.FrameID) == "":
		return errors.New("missing frame_id")
	case strings.TrimSpace(f.SessionID) == "":
		return errors.New("missing session_id")
	case !model.Phase(f.Phase).Valid():
		return errors.New("invalid phase; must be calibration or test")
	case f.T < 0:
		return errors.New("invalid t; must be non-negative")
	case len(f.Points) == 0:
		return errors.New("missing points")
	}
	return nil
}

// toBatch converts the wire shape into the domain frame batch. Landmark
// coordinates are normalized viewport fractions, so out-of-frame readings
// are clamped back into [0, 1].
func (f frameRequest) toBatch() model.FrameBatch {
	points := make(map[model.Finger]model.Point, len(f.Points))
	for name, p := range f.Points {
		finger := model.Finger(strings.ToUpper(strings.TrimSpace(name)))
		points[finger] = model.Point{X: clamp01(p.X), Y: clamp01(p.Y)}
	}
	return model.FrameBatch{
		FrameID:   f.FrameID,
		SessionID: f.SessionID,
		Phase:     model.Phase(f.Phase),
		T:         f.T,
		Points:    points,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
