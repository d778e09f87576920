// Package types contains common read shapes shared between the service and
// the HTTP API. They are plain serializable structures with no behavior.
package types

import "time"

// Breakdown mirrors the scoring breakdown for outward serialization.
type Breakdown struct {
	AvgTremor  float64 `json:"avg_tremor"`
	AvgDrift   float64 `json:"avg_drift"`
	AvgFatigue float64 `json:"avg_fatigue"`

	PenaltyTremor  float64 `json:"penalty_tremor"`
	PenaltyDrift   float64 `json:"penalty_drift"`
	PenaltyFatigue float64 `json:"penalty_fatigue"`

	WeightedPenalty float64 `json:"weighted_penalty"`
}

// SeriesPoint is one displacement sample for plotting.
type SeriesPoint struct {
	T float64 `json:"t"`
	D float64 `json:"d"`
}

// Correlation carries the inter-finger correlation heatmap data.
type Correlation struct {
	Fingers []string    `json:"fingers"`
	Matrix  [][]float64 `json:"matrix"`
}

// Result is the outward shape of a completed assessment.
type Result struct {
	SessionID string    `json:"session_id"`
	Score     float64   `json:"stability_score"`
	Breakdown Breakdown `json:"breakdown"`

	Tremor  map[string]float64 `json:"tremor"`
	Drift   map[string]float64 `json:"drift"`
	Fatigue map[string]float64 `json:"fatigue"`

	SampleCounts map[string]int `json:"sample_counts"`
	CompletedAt  time.Time      `json:"completed_at"`
}

// Series is the outward shape of the derived displacement series and the
// correlation matrix, consumed by plotting.
type Series struct {
	SessionID   string                   `json:"session_id"`
	Series      map[string][]SeriesPoint `json:"series"`
	Correlation Correlation              `json:"correlation"`
}
