package scoring

import "errors"

// Sentinel kinds for scoring configuration errors.
var (
	ErrInvalidLimits  = errors.New("normalization limits must be positive")
	ErrInvalidWeights = errors.New("invalid metric weights")
)
