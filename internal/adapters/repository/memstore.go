package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/steadihand/steadihand/internal/domain/model"
	"github.com/steadihand/steadihand/pkg/metrics"
)

// defaultShardCount spreads sessions over independently locked shards so a
// burst of frames for one session never blocks ingest for another.
const defaultShardCount = 8

// shard is a lock-protected slice of the session map.
type shard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// MemStore implements Store with sharded in-memory session maps.
type MemStore struct {
	shards     []*shard
	shardCount int
}

// NewMemStore creates a MemStore with configuration options.
func NewMemStore(_ context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{sessions: make(map[string]*Session)}
	}
	return s
}

// shardFor maps a session id onto its shard.
func (s *MemStore) shardFor(id string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// Create registers a new empty session.
func (s *MemStore) Create(ctx context.Context, id string) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	if _, exists := sh.sessions[id]; exists {
		sh.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	sh.sessions[id] = &Session{
		ID:           id,
		CreatedAt:    time.Now(),
		Calibration:  make(map[model.Finger][]model.Point),
		Trajectories: make(model.RawSeries),
	}
	// Count re-locks the shard, so update the gauge outside the lock.
	sh.mu.Unlock()

	metrics.UpdateTotalSessions(s.Count(ctx))
	return nil
}

// Append records one frame's observations.
func (s *MemStore) Append(_ context.Context, batch model.FrameBatch) error {
	sh := s.shardFor(batch.SessionID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, exists := sh.sessions[batch.SessionID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, batch.SessionID)
	}
	if sess.Completed() {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, batch.SessionID)
	}

	switch batch.Phase {
	case model.PhaseCalibration:
		for finger, p := range batch.Points {
			sess.Calibration[finger] = append(sess.Calibration[finger], p)
		}
	case model.PhaseTest:
		for finger, p := range batch.Points {
			sess.Trajectories[finger] = append(sess.Trajectories[finger], model.Sample{
				T: batch.T,
				X: p.X,
				Y: p.Y,
			})
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPhase, batch.Phase)
	}
	return nil
}

// SetBaseline stores the per-finger reference positions.
func (s *MemStore) SetBaseline(_ context.Context, id string, base model.BaselineSet) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, exists := sh.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.Completed() {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, id)
	}

	sess.Baseline = make(model.BaselineSet, len(base))
	for finger, p := range base {
		sess.Baseline[finger] = p
	}
	return nil
}

// Snapshot returns a deep copy of the session.
func (s *MemStore) Snapshot(_ context.Context, id string) (Session, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, exists := sh.sessions[id]
	if !exists {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return copySession(sess), nil
}

// SaveResult stores the final result, completing the session.
func (s *MemStore) SaveResult(_ context.Context, id string, res model.Result) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sess, exists := sh.sessions[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if sess.Completed() {
		return fmt.Errorf("%w: %s", ErrSessionCompleted, id)
	}
	sess.Result = &res
	return nil
}

// Result returns the stored result for a completed session.
func (s *MemStore) Result(_ context.Context, id string) (model.Result, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	sess, exists := sh.sessions[id]
	if !exists {
		return model.Result{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if !sess.Completed() {
		return model.Result{}, fmt.Errorf("%w: %s", ErrSessionNotCompleted, id)
	}
	return *sess.Result, nil
}

// Count returns the number of sessions across all shards.
func (s *MemStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.sessions)
		sh.mu.RUnlock()
	}
	return total
}

// copySession deep-copies session state so the pipeline sees a static
// snapshot even while frames for other sessions keep arriving.
func copySession(sess *Session) Session {
	out := Session{
		ID:           sess.ID,
		CreatedAt:    sess.CreatedAt,
		Calibration:  make(map[model.Finger][]model.Point, len(sess.Calibration)),
		Baseline:     make(model.BaselineSet, len(sess.Baseline)),
		Trajectories: make(model.RawSeries, len(sess.Trajectories)),
	}
	for finger, points := range sess.Calibration {
		out.Calibration[finger] = append([]model.Point(nil), points...)
	}
	for finger, p := range sess.Baseline {
		out.Baseline[finger] = p
	}
	for finger, samples := range sess.Trajectories {
		out.Trajectories[finger] = append([]model.Sample(nil), samples...)
	}
	if sess.Result != nil {
		res := *sess.Result
		out.Result = &res
	}
	return out
}
