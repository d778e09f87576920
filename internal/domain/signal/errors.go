package signal

import "errors"

// Sentinel kinds for signal-pipeline configuration errors.
var (
	ErrNoTrackedFingers = errors.New("tracked finger set is empty")
)
