// Package repository defines the session store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Session holds everything recorded for one assessment: calibration
// observations, the baseline derived from them, the live-test trajectories,
// and the final result once the session completes.
type Session struct {
	ID        string
	CreatedAt time.Time

	Calibration  map[model.Finger][]model.Point
	Baseline     model.BaselineSet
	Trajectories model.RawSeries

	Result *model.Result
}

// Completed reports whether the session has a stored result. A completed
// session is immutable; no further frames or baselines are accepted.
func (s *Session) Completed() bool {
	return s.Result != nil
}

// Store provides read/write access to session state.
type Store interface {
	// Create registers a new empty session.
	// Returns ErrSessionExists if the id is already taken.
	Create(ctx context.Context, id string) error

	// Append records one frame's observations into the session named by the
	// batch. Returns ErrSessionNotFound for unknown sessions and
	// ErrSessionCompleted once a result has been stored.
	Append(ctx context.Context, batch model.FrameBatch) error

	// SetBaseline stores the per-finger reference positions for a session.
	SetBaseline(ctx context.Context, id string, base model.BaselineSet) error

	// Snapshot returns a deep copy of the session, safe to hand to the pure
	// pipeline while ingest continues elsewhere.
	Snapshot(ctx context.Context, id string) (Session, error)

	// SaveResult stores the final result, completing the session.
	// Returns ErrSessionCompleted if a result is already stored.
	SaveResult(ctx context.Context, id string, res model.Result) error

	// Result returns the stored result.
	// Returns ErrSessionNotCompleted when the session has no result yet.
	Result(ctx context.Context, id string) (model.Result, error)

	// Count returns the number of sessions tracked by the store.
	Count(ctx context.Context) int
}
