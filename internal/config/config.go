// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New(...Option) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
	"strings"

	"github.com/steadihand/steadihand/internal/domain/model"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FrameQueueSize bounds the in-memory frame queue.
	FrameQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of recording workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the frame deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the session store.
	ShardCount int `koanf:"shard_count"`

	// TrackedFingers enumerates the fingertips the pipeline iterates over.
	TrackedFingers []string `koanf:"tracked_fingers"`

	// WeightTremor, WeightDrift and WeightFatigue set how much each metric
	// contributes to the stability score. Nominally they sum to 1.0; any
	// positive triple behaves as fractional shares.
	WeightTremor  float64 `koanf:"weight_tremor"`
	WeightDrift   float64 `koanf:"weight_drift"`
	WeightFatigue float64 `koanf:"weight_fatigue"`

	// TremorMax, DriftMax and FatigueMax are the expected-maximum constants
	// that normalize whole-hand averages into [0,1] penalties.
	TremorMax  float64 `koanf:"tremor_max"`
	DriftMax   float64 `koanf:"drift_max"`
	FatigueMax float64 `koanf:"fatigue_max"`

	// FatigueWindowSeconds is the early/late fatigue window length;
	// FatigueSpanSeconds is the minimum recording span at which the fixed
	// windows are used instead of a midpoint split.
	FatigueWindowSeconds float64 `koanf:"fatigue_window_seconds"`
	FatigueSpanSeconds   float64 `koanf:"fatigue_span_seconds"`

	// CalibrationSeconds and TestSeconds advertise the recording durations
	// to capture clients; the pipeline itself takes whatever span it gets.
	CalibrationSeconds float64 `koanf:"calibration_seconds"`
	TestSeconds        float64 `koanf:"test_seconds"`
}

// New creates a Config with the default assessment parameters.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		FrameQueueSize: 100_000,
		WorkerCount:    runtime.NumCPU() * 2,
		DedupeSize:     500_000,
		ShardCount:     8,

		TrackedFingers: []string{"THUMB", "INDEX", "MIDDLE"},

		WeightTremor:  0.4,
		WeightDrift:   0.3,
		WeightFatigue: 0.3,

		TremorMax:  0.05,
		DriftMax:   0.1,
		FatigueMax: 2.0,

		FatigueWindowSeconds: 10.0,
		FatigueSpanSeconds:   20.0,

		CalibrationSeconds: 3.0,
		TestSeconds:        30.0,
	}
}

// Fingers returns the tracked-finger set as domain identifiers, uppercased
// so config files can spell them either way.
func (c *Config) Fingers() []model.Finger {
	fingers := make([]model.Finger, len(c.TrackedFingers))
	for i, f := range c.TrackedFingers {
		fingers[i] = model.Finger(strings.ToUpper(strings.TrimSpace(f)))
	}
	return fingers
}
