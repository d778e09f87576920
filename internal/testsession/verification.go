package testsession

import (
	"context"
	"fmt"
	"log"
	"math"
)

// Score bounds and tolerance for verification.
const (
	minScore       = 0.0
	maxScore       = 100.0
	scoreTolerance = 1e-6
)

// verifyResult checks the scored assessment for internal consistency.
func verifyResult(ctx context.Context, config *Config, result Result) error {
	log.Println("🔍 Verifying result...")

	if result.Score < minScore || result.Score > maxScore {
		return fmt.Errorf("score %.3f outside [%.0f, %.0f]", result.Score, minScore, maxScore)
	}

	b := result.Breakdown
	for name, penalty := range map[string]float64{
		"tremor":  b.PenaltyTremor,
		"drift":   b.PenaltyDrift,
		"fatigue": b.PenaltyFatigue,
	} {
		if penalty < 0 || penalty > 1 {
			return fmt.Errorf("%s penalty %.3f outside [0, 1]", name, penalty)
		}
	}

	// The score and the weighted penalty must agree unless clamping applied
	reconstructed := maxScore * (1 - b.WeightedPenalty)
	if reconstructed >= minScore && reconstructed <= maxScore {
		if math.Abs(reconstructed-result.Score) > scoreTolerance {
			return fmt.Errorf("score %.6f does not match weighted penalty (expected %.6f)", result.Score, reconstructed)
		}
	}

	// Every simulated finger must be present in the metric maps
	for _, finger := range config.Fingers {
		if _, ok := result.Tremor[finger]; !ok {
			return fmt.Errorf("finger %s missing from tremor metrics", finger)
		}
		if _, ok := result.Drift[finger]; !ok {
			return fmt.Errorf("finger %s missing from drift metrics", finger)
		}
		if _, ok := result.Fatigue[finger]; !ok {
			return fmt.Errorf("finger %s missing from fatigue metrics", finger)
		}
	}

	// A simulated tremor should register as a positive whole-hand average
	if config.TremorAmplitude > 0 && b.AvgTremor <= 0 {
		log.Printf("⚠️  Expected positive tremor average, got %.6f", b.AvgTremor)
	}

	log.Println("✅ Result verification completed")
	return nil
}
