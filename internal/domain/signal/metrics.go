package signal

import "github.com/steadihand/steadihand/internal/domain/model"

// Default fatigue-window configuration constants, in seconds.
const (
	defaultWindowLength  = 10.0
	defaultSpanThreshold = 20.0

	// Early-window RMS below this amplitude is treated as zero to avoid
	// division blow-up in the fatigue ratio.
	minEarlyRMS = 1e-6

	// neutralFatigue means "no detectable change between early and late".
	neutralFatigue = 1.0
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithWindowLength sets the early/late fatigue window length in seconds.
func WithWindowLength(seconds float64) Option {
	return func(e *Extractor) {
		if seconds > 0 {
			e.windowLength = seconds
		}
	}
}

// WithSpanThreshold sets the minimum recording span, in seconds, at which
// fixed-length fatigue windows are used instead of the half-split fallback.
func WithSpanThreshold(seconds float64) Option {
	return func(e *Extractor) {
		if seconds > 0 {
			e.spanThreshold = seconds
		}
	}
}

// Extractor computes the three per-finger movement metrics from displacement
// series: tremor RMS, drift, and fatigue index.
type Extractor struct {
	windowLength  float64
	spanThreshold float64
}

// NewExtractor creates an Extractor with configuration options.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		windowLength:  defaultWindowLength,
		spanThreshold: defaultSpanThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tremor computes the RMS of all displacement values, per finger.
// An empty series yields 0.0.
func (e *Extractor) Tremor(ds model.DisplacementSet) model.MetricSet {
	tremor := make(model.MetricSet, len(ds))
	for finger, series := range ds {
		values := make([]float64, len(series))
		for i, p := range series {
			values[i] = p.D
		}
		tremor[finger] = rms(values)
	}
	return tremor
}

// Drift computes, per finger, the signed change in displacement between the
// first and last sample of the series. Positive values mean net outward
// movement from baseline. Series with fewer than 2 samples yield 0.0.
// The incoming order is trusted as chronological; no re-sorting happens here.
func (e *Extractor) Drift(ds model.DisplacementSet) model.MetricSet {
	drift := make(model.MetricSet, len(ds))
	for finger, series := range ds {
		if len(series) < 2 {
			drift[finger] = 0.0
			continue
		}
		drift[finger] = series[len(series)-1].D - series[0].D
	}
	return drift
}

// windowClass is an explicit three-way classification of a sample relative
// to the fatigue windows. Samples between the early and late windows fall in
// a dead zone and contribute to neither RMS.
type windowClass int

const (
	windowEarly windowClass = iota
	windowLate
	windowExcluded
)

// Fatigue computes, per finger, the ratio of late-window RMS to early-window
// RMS.
//
// When the recording spans at least the configured threshold, the early
// window covers samples with t <= t_min + windowLength and the late window
// covers t >= t_max - windowLength; anything strictly between is excluded.
// Shorter recordings are split at the midpoint with no dead zone.
//
// Series with fewer than 2 samples, an empty window, or a near-zero early
// RMS yield the neutral value 1.0. The ratio itself is not clamped; scoring
// normalization handles that later.
func (e *Extractor) Fatigue(ds model.DisplacementSet) model.MetricSet {
	fatigue := make(model.MetricSet, len(ds))
	for finger, series := range ds {
		fatigue[finger] = e.fatigueIndex(series)
	}
	return fatigue
}

func (e *Extractor) fatigueIndex(series []model.DisplacementPoint) float64 {
	if len(series) < 2 {
		return neutralFatigue
	}

	tMin := series[0].T
	tMax := series[0].T
	for _, p := range series[1:] {
		if p.T < tMin {
			tMin = p.T
		}
		if p.T > tMax {
			tMax = p.T
		}
	}
	span := tMax - tMin

	var early, late []float64
	for _, p := range series {
		switch e.classify(p.T, tMin, tMax, span) {
		case windowEarly:
			early = append(early, p.D)
		case windowLate:
			late = append(late, p.D)
		case windowExcluded:
			// dead zone
		}
	}

	if len(early) == 0 || len(late) == 0 {
		return neutralFatigue
	}

	earlyRMS := rms(early)
	if earlyRMS < minEarlyRMS {
		return neutralFatigue
	}
	return rms(late) / earlyRMS
}

// classify places one timestamp into the early window, the late window, or
// the excluded dead zone. Window boundaries are inclusive; when the windows
// meet or overlap, the early window takes precedence, so a sample sitting
// exactly on a shared boundary is counted once, as early.
func (e *Extractor) classify(t, tMin, tMax, span float64) windowClass {
	if span >= e.spanThreshold {
		switch {
		case t <= tMin+e.windowLength:
			return windowEarly
		case t >= tMax-e.windowLength:
			return windowLate
		default:
			return windowExcluded
		}
	}

	// Short recording: split at the midpoint, no dead zone.
	if t <= tMin+span/2 {
		return windowEarly
	}
	return windowLate
}
