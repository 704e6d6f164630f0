package service

import (
	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/retention"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithThresholds sets the default thresholds used when a request omits them.
func WithThresholds(t retention.Thresholds) Option {
	return func(s *Service) {
		if t.Validate() == nil {
			s.thresholds = t
		}
	}
}

// WithEncoding selects config.EncodingVocabulary or config.EncodingFactorize.
func WithEncoding(mode string) Option {
	return func(s *Service) {
		if mode == config.EncodingVocabulary || mode == config.EncodingFactorize {
			s.encoding = mode
		}
	}
}

// WithVocabulary sets the frozen categorical vocabulary.
func WithVocabulary(v *features.Vocabulary) Option {
	return func(s *Service) {
		s.vocabulary = v
	}
}

// WithAdvisory turns attribution and advice for priority records on or off.
func WithAdvisory(enabled bool) Option {
	return func(s *Service) {
		s.advisory = enabled
	}
}

// WithExplainTopK bounds the number of attribution entries.
func WithExplainTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithWorkerCount sets the number of goroutines scoring batch rows.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCloser registers a release function that Stop runs, for resources
// such as model sessions owned by the service.
func WithCloser(closeFn func() error) Option {
	return func(s *Service) {
		if closeFn != nil {
			s.closers = append(s.closers, closeFn)
		}
	}
}
