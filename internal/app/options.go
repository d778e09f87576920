package service

import (
	"github.com/steadihand/steadihand/internal/domain/model"
	"github.com/steadihand/steadihand/internal/domain/scoring"
	"github.com/steadihand/steadihand/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of recording workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the frame queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the frame deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the session store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithTrackedFingers sets the fingertips every pipeline stage iterates over.
func WithTrackedFingers(fingers []model.Finger) Option {
	return func(s *Service) {
		if len(fingers) > 0 {
			s.fingers = fingers
		}
	}
}

// WithWeights sets the per-metric scoring weights.
func WithWeights(w scoring.Weights) Option {
	return func(s *Service) {
		s.weights = w
	}
}

// WithLimits sets the per-metric normalization maxima.
func WithLimits(l scoring.Limits) Option {
	return func(s *Service) {
		s.limits = l
	}
}

// WithFatigueWindow sets the fatigue window length and the span threshold,
// both in seconds. Non-positive values keep the defaults.
func WithFatigueWindow(window, span float64) Option {
	return func(s *Service) {
		s.windowSeconds = window
		s.spanSeconds = span
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
