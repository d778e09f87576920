package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the per-metric contribution weights.
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithLimits sets the per-metric normalization maxima.
func WithLimits(l Limits) Option {
	return func(s *Scorer) {
		s.limits = l
	}
}
