// Package correlation computes the Pearson correlation matrix between
// finger displacement signals, the input for the presentation layer's
// coordination heatmap.
package correlation

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Matrix computes pairwise Pearson correlations between displacement series.
//
// Fingers are taken in the given order; fingers with an empty series are
// skipped entirely so the matrix stays square over usable signals. Each pair
// is correlated over the overlapping prefix of the two series (capture drops
// leave series of unequal length). Pairs with fewer than 2 overlapping
// samples, and degenerate (constant) signals, yield 0.0; the diagonal is
// always 1.0.
func Matrix(ds model.DisplacementSet, fingers []model.Finger) ([]model.Finger, [][]float64) {
	labels := make([]model.Finger, 0, len(fingers))
	series := make([][]float64, 0, len(fingers))

	for _, finger := range fingers {
		points := ds[finger]
		if len(points) == 0 {
			continue
		}
		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.D
		}
		labels = append(labels, finger)
		series = append(series, values)
	}

	matrix := make([][]float64, len(labels))
	for i := range labels {
		matrix[i] = make([]float64, len(labels))
		matrix[i][i] = 1.0
		for j := 0; j < i; j++ {
			r := pearson(series[i], series[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return labels, matrix
}

// pearson correlates the overlapping prefix of two signals, degrading to 0.0
// when there is not enough data or the correlation is undefined.
func pearson(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return 0.0
	}
	r, err := stats.Pearson(a[:n], b[:n])
	if err != nil || math.IsNaN(r) {
		return 0.0
	}
	return r
}
