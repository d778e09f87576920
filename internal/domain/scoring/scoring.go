// Package scoring combines per-finger movement metrics into a single
// normalized 0-100 stability score with an auditable breakdown.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultWeightTremor  = 0.4
	defaultWeightDrift   = 0.3
	defaultWeightFatigue = 0.3

	defaultTremorMax  = 0.05
	defaultDriftMax   = 0.1
	defaultFatigueMax = 2.0

	// weightTolerance bounds how far the weight sum may stray from 1.0
	// before the weights are renormalized into fractional shares.
	weightTolerance = 1e-6

	maxScoreValue = 100.0

	// neutralFatigue marks the fatigue level at which the penalty ramp
	// starts; values at or below it carry no penalty.
	neutralFatigue = 1.0
)

// Weights holds the per-metric contribution weights. They nominally sum to
// 1.0; any positive triple behaves as fractional shares after
// renormalization.
type Weights struct {
	Tremor  float64
	Drift   float64
	Fatigue float64
}

// Limits holds the "expected maximum" normalization constants that map each
// whole-hand average onto a [0,1] penalty.
type Limits struct {
	Tremor  float64
	Drift   float64
	Fatigue float64
}

// Breakdown exposes every intermediate value of a score computation for
// transparency. Presentation and tests depend on it; it is not optional.
type Breakdown struct {
	AvgTremor  float64 `json:"avg_tremor"`
	AvgDrift   float64 `json:"avg_drift"`
	AvgFatigue float64 `json:"avg_fatigue"`

	PenaltyTremor  float64 `json:"penalty_tremor"`
	PenaltyDrift   float64 `json:"penalty_drift"`
	PenaltyFatigue float64 `json:"penalty_fatigue"`

	WeightedPenalty float64 `json:"weighted_penalty"`
	Score           float64 `json:"stability_score"`
}

// DefaultWeights returns the nominal weight configuration.
func DefaultWeights() Weights {
	return Weights{
		Tremor:  defaultWeightTremor,
		Drift:   defaultWeightDrift,
		Fatigue: defaultWeightFatigue,
	}
}

// DefaultLimits returns the nominal normalization maxima.
func DefaultLimits() Limits {
	return Limits{
		Tremor:  defaultTremorMax,
		Drift:   defaultDriftMax,
		Fatigue: defaultFatigueMax,
	}
}

// Scorer aggregates per-finger metric maps into a whole-hand stability score.
type Scorer struct {
	weights Weights
	limits  Limits
}

// New creates a Scorer with configuration options.
//
// Non-positive normalization limits and weights that are negative or sum to
// zero are configuration errors, not data conditions, so they fail here
// rather than degrading at scoring time.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{
		weights: DefaultWeights(),
		limits:  DefaultLimits(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.limits.Tremor <= 0 || s.limits.Drift <= 0 || s.limits.Fatigue <= 0 {
		return nil, fmt.Errorf("%w: limits %+v", ErrInvalidLimits, s.limits)
	}
	if s.weights.Tremor < 0 || s.weights.Drift < 0 || s.weights.Fatigue < 0 {
		return nil, fmt.Errorf("%w: weights %+v", ErrInvalidWeights, s.weights)
	}
	if s.weights.Tremor+s.weights.Drift+s.weights.Fatigue < weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidWeights)
	}
	return s, nil
}

// Score computes the stability score from the three per-finger metric maps.
//
// Pure function: identical inputs produce bit-identical output, and no input
// shape fails. Empty metric maps flow through as zero averages and neutral
// penalties, which biases the score toward 100; callers distinguish that
// case from a genuinely steady hand via sample-count metadata.
func (s *Scorer) Score(tremor, drift, fatigue model.MetricSet) Breakdown {
	avgTremor := average(tremor)
	avgDrift := average(drift)
	avgFatigue := average(fatigue)

	b := Breakdown{
		AvgTremor:  avgTremor,
		AvgDrift:   avgDrift,
		AvgFatigue: avgFatigue,

		PenaltyTremor:  clamp01(avgTremor / s.limits.Tremor),
		PenaltyDrift:   clamp01(math.Abs(avgDrift) / s.limits.Drift),
		PenaltyFatigue: s.fatiguePenalty(avgFatigue),
	}

	wT, wD, wF := s.shares()
	b.WeightedPenalty = wT*b.PenaltyTremor + wD*b.PenaltyDrift + wF*b.PenaltyFatigue
	b.Score = math.Max(0, math.Min(maxScoreValue, maxScoreValue*(1.0-b.WeightedPenalty)))

	return b
}

// fatiguePenalty ramps linearly from the neutral fatigue level to the
// configured worst case. Neutral-or-improving fatigue carries no penalty.
func (s *Scorer) fatiguePenalty(avgFatigue float64) float64 {
	if avgFatigue <= neutralFatigue {
		return 0.0
	}
	denom := math.Max(s.limits.Fatigue-neutralFatigue, weightTolerance)
	return clamp01((avgFatigue - neutralFatigue) / denom)
}

// shares returns the weights renormalized to fractional shares when their
// sum drifts from 1.0 beyond floating tolerance.
func (s *Scorer) shares() (wT, wD, wF float64) {
	wT, wD, wF = s.weights.Tremor, s.weights.Drift, s.weights.Fatigue
	sum := wT + wD + wF
	if math.Abs(sum-1.0) > weightTolerance {
		wT /= sum
		wD /= sum
		wF /= sum
	}
	return wT, wD, wF
}

// average computes the arithmetic mean across fingers; 0.0 for an empty map.
// Fingers are summed in sorted key order: floating addition is not
// associative, so map iteration order would otherwise leak into the result.
func average(metric model.MetricSet) float64 {
	if len(metric) == 0 {
		return 0.0
	}
	fingers := make([]model.Finger, 0, len(metric))
	for finger := range metric {
		fingers = append(fingers, finger)
	}
	sort.Slice(fingers, func(i, j int) bool { return fingers[i] < fingers[j] })

	values := make([]float64, len(fingers))
	for i, finger := range fingers {
		values[i] = metric[finger]
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0.0
	}
	return mean
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
