package signal

import (
	"math"

	"github.com/montanaflynn/stats"
)

// rms computes the root mean square of values. RMS of an empty slice is
// defined as 0.0, not an error, so sparse recordings flow through neutrally.
func rms(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	squares := make([]float64, len(values))
	for i, v := range values {
		squares[i] = v * v
	}
	mean, err := stats.Mean(squares)
	if err != nil {
		return 0.0
	}
	return math.Sqrt(mean)
}
