package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNoCalibrationData means no hand observations were recorded during
	// the calibration phase, so no baseline can be derived.
	ErrNoCalibrationData = errors.New("no calibration observations recorded")
)
