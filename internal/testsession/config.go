package testsession

import "time"

// Config holds configuration for a synthetic assessment run
type Config struct {
	BaseURL            string        // Base URL of the service
	Fingers            []string      // Finger names to simulate
	CalibrationSeconds float64       // Duration of the calibration phase
	TestSeconds        float64       // Duration of the test phase
	SampleRate         float64       // Capture frames per second
	TremorAmplitude    float64       // Sinusoid amplitude in viewport fractions
	TremorFrequency    float64       // Sinusoid frequency in Hz
	DriftRate          float64       // Linear drift in viewport fractions per second
	NoiseLevel         float64       // Uniform jitter amplitude
	DropProbability    float64       // Chance that a finger is missing from a frame
	Workers            int           // Number of concurrent submit workers
	Timeout            time.Duration // HTTP request timeout
	OutputFile         string        // Output file for generated frames
	LogFile            string        // Log file for test output
	Verbose            bool          // Enable verbose logging
}

// Frame represents one capture frame to be submitted
type Frame struct {
	FrameID   string           `json:"frame_id"`
	SessionID string           `json:"session_id"`
	Phase     string           `json:"phase"`
	T         float64          `json:"t"`
	Points    map[string]Point `json:"points"`
}

// Point is a normalized landmark position
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// AckResponse represents the response from frame submission
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// SessionResponse represents the response from session creation
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// BaselineResponse represents the response from baseline freezing
type BaselineResponse struct {
	SessionID string           `json:"session_id"`
	Baseline  map[string]Point `json:"baseline"`
	Samples   map[string]int   `json:"samples"`
}

// Breakdown mirrors the scoring breakdown returned by the service
type Breakdown struct {
	AvgTremor  float64 `json:"avg_tremor"`
	AvgDrift   float64 `json:"avg_drift"`
	AvgFatigue float64 `json:"avg_fatigue"`

	PenaltyTremor  float64 `json:"penalty_tremor"`
	PenaltyDrift   float64 `json:"penalty_drift"`
	PenaltyFatigue float64 `json:"penalty_fatigue"`

	WeightedPenalty float64 `json:"weighted_penalty"`
}

// Result represents a completed assessment
type Result struct {
	SessionID string    `json:"session_id"`
	Score     float64   `json:"stability_score"`
	Breakdown Breakdown `json:"breakdown"`

	Tremor  map[string]float64 `json:"tremor"`
	Drift   map[string]float64 `json:"drift"`
	Fatigue map[string]float64 `json:"fatigue"`

	SampleCounts map[string]int `json:"sample_counts"`
}

// Stats holds test statistics
type Stats struct {
	FramesGenerated  int
	FramesSubmitted  int
	FramesSuccessful int
	FramesDuplicate  int
	FramesFailed     int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
