package testsession

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"strconv"
	"time"

	"github.com/steadihand/steadihand/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	frameIDDivisor     = 10000
)

// Hand geometry constants. Fingers rest at distinct viewport positions so
// the simulated hand looks like a hand and not a single jittering point.
const (
	handCenterX   = 0.5
	handCenterY   = 0.5
	fingerSpread  = 0.08
	phaseStagger  = 0.7
	twoPi         = 2 * math.Pi
	halfAmplitude = 0.5
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generateFrames simulates one capture phase for a session. Each finger
// follows its rest position plus a tremor sinusoid, a slow linear drift and
// uniform jitter. Fingers occasionally drop out of a frame the way landmark
// tracking loses them in real captures.
func generateFrames(ctx context.Context, config *Config, sessionID, phase string, seconds float64, stats *Stats) []Frame {
	interval := 1.0 / config.SampleRate
	count := int(seconds * config.SampleRate)

	logger.Get().Info(ctx, "generating frames",
		logger.String("sessionID", sessionID),
		logger.String("phase", phase),
		logger.Int("count", count))

	frames := make([]Frame, 0, count)
	for i := 0; i < count; i++ {
		t := float64(i) * interval
		points := make(map[string]Point, len(config.Fingers))
		for f, name := range config.Fingers {
			if config.DropProbability > 0 && getRandomFloat() < config.DropProbability {
				continue
			}
			points[name] = fingerPosition(config, f, t, phase)
		}
		if len(points) == 0 {
			continue
		}
		frames = append(frames, Frame{
			FrameID:   newFrameID(i),
			SessionID: sessionID,
			Phase:     phase,
			T:         t,
			Points:    points,
		})
	}

	stats.FramesGenerated += len(frames)
	return frames
}

// fingerPosition computes one finger's landmark at time t. During
// calibration the hand is at rest, so only jitter applies; during the test
// phase the tremor sinusoid and drift are added on top.
func fingerPosition(config *Config, fingerIndex int, t float64, phase string) Point {
	restX := handCenterX + float64(fingerIndex)*fingerSpread
	restY := handCenterY

	x := restX
	y := restY
	if phase == "test" {
		stagger := float64(fingerIndex) * phaseStagger
		x += config.TremorAmplitude * math.Sin(twoPi*config.TremorFrequency*t+stagger)
		y += config.TremorAmplitude * math.Cos(twoPi*config.TremorFrequency*t+stagger)
		x += config.DriftRate * t
	}

	// Uniform jitter centered on zero
	x += config.NoiseLevel * (getRandomFloat() - halfAmplitude)
	y += config.NoiseLevel * (getRandomFloat() - halfAmplitude)

	return Point{X: clampUnit(x), Y: clampUnit(y)}
}

// newFrameID builds a unique frame identifier.
func newFrameID(index int) string {
	randNum, _ := rand.Int(rand.Reader, big.NewInt(frameIDDivisor))
	return "frame_" + strconv.FormatInt(int64(index), 10) + "_" + strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + strconv.FormatInt(randNum.Int64(), 10)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
