// Package model contains domain models passed between layers.
package model

import "time"

// Finger identifies a tracked fingertip. The tracked set is configuration,
// not data; every pipeline stage iterates over the configured set.
type Finger string

// Canonical fingertips tracked by default.
const (
	Thumb  Finger = "THUMB"
	Index  Finger = "INDEX"
	Middle Finger = "MIDDLE"
)

// DefaultFingers returns the default tracked-finger set.
func DefaultFingers() []Finger {
	return []Finger{Thumb, Index, Middle}
}

// Point is a camera-frame-normalized fingertip position, x and y in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample is a single raw fingertip observation.
// T is seconds since the start of the recording; ordering within a finger's
// sequence is chronological by T, but the interval between samples is not
// uniform (the capture source drops and jitters frames).
type Sample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DisplacementPoint pairs a timestamp with the Euclidean distance of a
// fingertip from its baseline position. D is always non-negative.
type DisplacementPoint struct {
	T float64 `json:"t"`
	D float64 `json:"d"`
}

// Phase names the two recording phases of a session.
type Phase string

// Recording phases.
const (
	PhaseCalibration Phase = "calibration"
	PhaseTest        Phase = "test"
)

// Valid reports whether p is a known recording phase.
func (p Phase) Valid() bool {
	return p == PhaseCalibration || p == PhaseTest
}

// RawSeries maps finger -> chronological raw samples.
type RawSeries map[Finger][]Sample

// BaselineSet maps finger -> calibration reference point. It is established
// once per session and read-only for the duration of a test.
type BaselineSet map[Finger]Point

// DisplacementSet maps finger -> (t, displacement) series.
type DisplacementSet map[Finger][]DisplacementPoint

// MetricSet maps finger -> a single scalar metric value. It covers exactly
// the fingers that had usable data; fingers with no data are absent.
type MetricSet map[Finger]float64

// FrameBatch is one capture frame's worth of fingertip observations for a
// session. Fingers the detector missed in that frame are simply absent from
// Points.
type FrameBatch struct {
	FrameID   string
	SessionID string
	Phase     Phase
	T         float64
	Points    map[Finger]Point
}

// Assessment is the scored outcome of a completed test: the 0-100 stability
// score plus the full breakdown of intermediate values, the per-finger metric
// maps it was computed from, and per-finger sample counts so callers can tell
// a genuinely steady hand from a test that simply produced no data.
type Assessment struct {
	Score float64

	AvgTremor  float64
	AvgDrift   float64
	AvgFatigue float64

	PenaltyTremor   float64
	PenaltyDrift    float64
	PenaltyFatigue  float64
	WeightedPenalty float64

	Tremor  MetricSet
	Drift   MetricSet
	Fatigue MetricSet

	SampleCounts map[Finger]int
	CompletedAt  time.Time
}

// Result is the immutable output of a completed test: the assessment plus
// the derived series kept for presentation (time-series plots and the
// inter-finger correlation heatmap).
type Result struct {
	Assessment Assessment

	Series             DisplacementSet
	CorrelationFingers []Finger
	Correlation        [][]float64
}
