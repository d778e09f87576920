// Package signal converts raw fingertip trajectories into baseline-relative
// displacement series and derives per-finger movement metrics from them.
//
// Every function here is a pure mapping over a complete, static snapshot of a
// recording; there is no I/O and no hidden state. Data-sparsity conditions
// (missing baseline, empty trajectory, single-sample series) degrade to
// defined neutral outputs instead of errors.
package signal

import (
	"math"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Deriver turns raw per-finger trajectories plus baseline positions into
// per-finger displacement series.
type Deriver struct {
	fingers []model.Finger
}

// NewDeriver creates a Deriver for the given tracked-finger set.
// An empty set is a configuration error.
func NewDeriver(fingers []model.Finger) (*Deriver, error) {
	if len(fingers) == 0 {
		return nil, ErrNoTrackedFingers
	}
	d := &Deriver{fingers: make([]model.Finger, len(fingers))}
	copy(d.fingers, fingers)
	return d, nil
}

// Fingers returns a copy of the tracked-finger set.
func (d *Deriver) Fingers() []model.Finger {
	out := make([]model.Finger, len(d.fingers))
	copy(out, d.fingers)
	return out
}

// Displacement converts raw trajectories into displacement series.
//
// Every finger in the tracked set is present in the output. A finger whose
// trajectory is empty, or that has no baseline, maps to an empty series; it
// is never omitted and never an error. Sample order is preserved as-is: the
// capture source delivers chronological samples and the deriver does not
// re-sort.
func (d *Deriver) Displacement(raw model.RawSeries, baselines model.BaselineSet) model.DisplacementSet {
	out := make(model.DisplacementSet, len(d.fingers))

	for _, finger := range d.fingers {
		samples := raw[finger]
		base, hasBase := baselines[finger]

		if len(samples) == 0 || !hasBase {
			out[finger] = []model.DisplacementPoint{}
			continue
		}

		series := make([]model.DisplacementPoint, 0, len(samples))
		for _, s := range samples {
			dx := s.X - base.X
			dy := s.Y - base.Y
			series = append(series, model.DisplacementPoint{
				T: s.T,
				D: math.Sqrt(dx*dx + dy*dy),
			})
		}
		out[finger] = series
	}

	return out
}
