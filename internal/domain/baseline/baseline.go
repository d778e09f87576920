// Package baseline estimates per-finger reference positions from a short
// calibration recording. The reference is the centroid of the observed
// positions; the live test measures displacement against it.
package baseline

import (
	"github.com/montanaflynn/stats"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Estimate computes the centroid of each finger's calibration observations.
// Fingers with no observations are absent from the result; an empty result
// means no hand was detected during calibration, which the caller surfaces
// to the user.
func Estimate(observations map[model.Finger][]model.Point) model.BaselineSet {
	out := make(model.BaselineSet, len(observations))

	for finger, points := range observations {
		if len(points) == 0 {
			continue
		}

		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for i, p := range points {
			xs[i] = p.X
			ys[i] = p.Y
		}

		meanX, errX := stats.Mean(xs)
		meanY, errY := stats.Mean(ys)
		if errX != nil || errY != nil {
			continue
		}
		out[finger] = model.Point{X: meanX, Y: meanY}
	}

	return out
}
