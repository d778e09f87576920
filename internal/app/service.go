// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	framequeue "github.com/steadihand/steadihand/internal/adapters/mq/queue"
	workerpool "github.com/steadihand/steadihand/internal/adapters/mq/worker"
	"github.com/steadihand/steadihand/internal/adapters/repository"
	"github.com/steadihand/steadihand/internal/domain/baseline"
	"github.com/steadihand/steadihand/internal/domain/correlation"
	"github.com/steadihand/steadihand/internal/domain/dedupe"
	"github.com/steadihand/steadihand/internal/domain/model"
	"github.com/steadihand/steadihand/internal/domain/scoring"
	"github.com/steadihand/steadihand/internal/domain/signal"
	"github.com/steadihand/steadihand/internal/domain/types"
	"github.com/steadihand/steadihand/pkg/logger"
	"github.com/steadihand/steadihand/pkg/metrics"
)

// Service implements the API dependencies for the assessment system.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions   repository.Store
	deduper    dedupe.Deduper
	frameQueue framequeue.Queue
	pool       *workerpool.Pool

	deriver   *signal.Deriver
	extractor *signal.Extractor
	scorer    *scoring.Scorer

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	shardCount  int

	fingers       []model.Finger
	weights       scoring.Weights
	limits        scoring.Limits
	windowSeconds float64
	spanSeconds   float64

	// State
	started bool

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   100000,
		dedupeSize:  50000,
		shardCount:  8,

		fingers: model.DefaultFingers(),
		weights: scoring.DefaultWeights(),
		limits:  scoring.DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting assessment service...")

	deriver, err := signal.NewDeriver(s.fingers)
	if err != nil {
		return err
	}
	scorer, err := scoring.New(
		scoring.WithWeights(s.weights),
		scoring.WithLimits(s.limits),
	)
	if err != nil {
		return err
	}

	s.deriver = deriver
	s.scorer = scorer
	s.extractor = signal.NewExtractor(
		signal.WithWindowLength(s.windowSeconds),
		signal.WithSpanThreshold(s.spanSeconds),
	)

	s.sessions = repository.NewMemStore(ctx,
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.frameQueue = framequeue.NewInMemoryQueue(
		framequeue.WithCapacity(s.queueSize),
		framequeue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.frameQueue, s.sessions)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "assessment service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Any("fingers", s.fingers),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping assessment service...")

	if s.pool != nil {
		s.pool.Stop()
	}
	if q, ok := s.frameQueue.(*framequeue.InMemoryQueue); ok {
		_ = q.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "assessment service stopped")
}

// CreateSession registers a new assessment session and returns its id.
func (s *Service) CreateSession(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := s.sessions.Create(ctx, id); err != nil {
		return "", err
	}
	metrics.RecordSessionCreated()
	s.logger.Debug(ctx, "session created", logger.String("sessionID", id))
	return id, nil
}

// SeenAndRecord atomically checks if a frame id was seen and records it if
// not. Returns true if the frame was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordFrameDuplicate()
	}
	return seen
}

// Unrecord removes a frame ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a frame batch for asynchronous recording.
func (s *Service) Enqueue(ctx context.Context, b model.FrameBatch) bool {
	ok := s.frameQueue.Enqueue(ctx, b)
	if ok {
		metrics.RecordFrameIngested()
	}
	return ok
}

// Calibrate derives baseline positions from the calibration observations
// recorded so far and stores them on the session. Fingers never observed
// during calibration get no baseline; an entirely empty calibration is the
// "no hand detected" condition and is reported as an error.
func (s *Service) Calibrate(ctx context.Context, id string) (model.BaselineSet, map[model.Finger]int, error) {
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if snap.Completed() {
		return nil, nil, repository.ErrSessionCompleted
	}

	base := baseline.Estimate(snap.Calibration)
	if len(base) == 0 {
		metrics.RecordCalibrationFailure()
		return nil, nil, ErrNoCalibrationData
	}
	if err := s.sessions.SetBaseline(ctx, id, base); err != nil {
		return nil, nil, err
	}

	counts := make(map[model.Finger]int, len(snap.Calibration))
	for finger, points := range snap.Calibration {
		counts[finger] = len(points)
	}

	s.logger.Info(ctx, "calibration complete",
		logger.String("sessionID", id),
		logger.Int("fingers", len(base)),
	)
	return base, counts, nil
}

// Complete runs the motion-signal pipeline over a static snapshot of the
// session and stores the result. Completing an already-completed session
// returns the stored result unchanged.
func (s *Service) Complete(ctx context.Context, id string) (types.Result, error) {
	snap, err := s.sessions.Snapshot(ctx, id)
	if err != nil {
		return types.Result{}, err
	}
	if snap.Completed() {
		return toResult(id, *snap.Result), nil
	}

	res := s.assess(snap)
	if err := s.sessions.SaveResult(ctx, id, res); err != nil {
		// Lost a race with a concurrent Complete; serve the stored result.
		if errors.Is(err, repository.ErrSessionCompleted) {
			stored, rerr := s.sessions.Result(ctx, id)
			if rerr == nil {
				return toResult(id, stored), nil
			}
		}
		return types.Result{}, err
	}

	metrics.RecordSessionCompleted()
	metrics.RecordStabilityScore(res.Assessment.Score)
	s.logger.Info(ctx, "session completed",
		logger.String("sessionID", id),
		logger.Float64("score", res.Assessment.Score),
	)
	return toResult(id, res), nil
}

// assess is the single forward pass: displacement -> metrics -> score.
func (s *Service) assess(snap repository.Session) model.Result {
	start := time.Now()
	defer func() {
		metrics.RecordPipelineLatency(float64(time.Since(start).Milliseconds()))
	}()

	// Workers record frames in arrival order, which under concurrent ingest
	// is not capture order. The deriver trusts chronological input, so
	// restore it here on the private snapshot.
	for _, samples := range snap.Trajectories {
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].T < samples[j].T })
	}

	displacement := s.deriver.Displacement(snap.Trajectories, snap.Baseline)

	tremor := s.extractor.Tremor(displacement)
	drift := s.extractor.Drift(displacement)
	fatigue := s.extractor.Fatigue(displacement)

	b := s.scorer.Score(tremor, drift, fatigue)

	corrFingers, corrMatrix := correlation.Matrix(displacement, s.deriver.Fingers())

	counts := make(map[model.Finger]int, len(s.fingers))
	for _, finger := range s.deriver.Fingers() {
		counts[finger] = len(snap.Trajectories[finger])
	}

	return model.Result{
		Assessment: model.Assessment{
			Score: b.Score,

			AvgTremor:  b.AvgTremor,
			AvgDrift:   b.AvgDrift,
			AvgFatigue: b.AvgFatigue,

			PenaltyTremor:   b.PenaltyTremor,
			PenaltyDrift:    b.PenaltyDrift,
			PenaltyFatigue:  b.PenaltyFatigue,
			WeightedPenalty: b.WeightedPenalty,

			Tremor:  tremor,
			Drift:   drift,
			Fatigue: fatigue,

			SampleCounts: counts,
			CompletedAt:  time.Now(),
		},
		Series:             displacement,
		CorrelationFingers: corrFingers,
		Correlation:        corrMatrix,
	}
}

// Result returns the stored result for a completed session.
func (s *Service) Result(ctx context.Context, id string) (types.Result, error) {
	res, err := s.sessions.Result(ctx, id)
	if err != nil {
		return types.Result{}, err
	}
	return toResult(id, res), nil
}

// Series returns the stored displacement series and correlation matrix.
func (s *Service) Series(ctx context.Context, id string) (types.Series, error) {
	res, err := s.sessions.Result(ctx, id)
	if err != nil {
		return types.Series{}, err
	}
	return toSeries(id, res), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		queueLen := s.frameQueue.Len(ctx)
		totalSessions := s.sessions.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalSessions"] = totalSessions

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateTotalSessions(totalSessions)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// toResult converts a stored result into its outward shape.
func toResult(id string, res model.Result) types.Result {
	a := res.Assessment
	return types.Result{
		SessionID: id,
		Score:     a.Score,
		Breakdown: types.Breakdown{
			AvgTremor:  a.AvgTremor,
			AvgDrift:   a.AvgDrift,
			AvgFatigue: a.AvgFatigue,

			PenaltyTremor:  a.PenaltyTremor,
			PenaltyDrift:   a.PenaltyDrift,
			PenaltyFatigue: a.PenaltyFatigue,

			WeightedPenalty: a.WeightedPenalty,
		},
		Tremor:       toFloatMap(a.Tremor),
		Drift:        toFloatMap(a.Drift),
		Fatigue:      toFloatMap(a.Fatigue),
		SampleCounts: toCountMap(a.SampleCounts),
		CompletedAt:  a.CompletedAt,
	}
}

// toSeries converts stored series data into its outward shape.
func toSeries(id string, res model.Result) types.Series {
	series := make(map[string][]types.SeriesPoint, len(res.Series))
	for finger, points := range res.Series {
		out := make([]types.SeriesPoint, len(points))
		for i, p := range points {
			out[i] = types.SeriesPoint{T: p.T, D: p.D}
		}
		series[string(finger)] = out
	}

	fingers := make([]string, len(res.CorrelationFingers))
	for i, finger := range res.CorrelationFingers {
		fingers[i] = string(finger)
	}

	return types.Series{
		SessionID: id,
		Series:    series,
		Correlation: types.Correlation{
			Fingers: fingers,
			Matrix:  res.Correlation,
		},
	}
}

func toFloatMap(m model.MetricSet) map[string]float64 {
	out := make(map[string]float64, len(m))
	for finger, v := range m {
		out[string(finger)] = v
	}
	return out
}

func toCountMap(m map[model.Finger]int) map[string]int {
	out := make(map[string]int, len(m))
	for finger, v := range m {
		out[string(finger)] = v
	}
	return out
}
