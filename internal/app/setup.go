package service

import (
	"context"
	"fmt"

	"github.com/attriwatch/attriwatch/internal/adapters/modelstore"
	"github.com/attriwatch/attriwatch/internal/config"
	"github.com/attriwatch/attriwatch/internal/domain/retention"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// FromConfig loads both model manifests named by cfg and builds a Service
// configured from it. Extra options apply after the config-derived ones.
// The returned service owns the models; Stop releases them even when the
// service was never started.
func FromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	loadOpts := []modelstore.Option{modelstore.WithLibraryPath(cfg.ONNXRuntimeLibrary)}

	attr, err := modelstore.Load(ctx, cfg.AttritionModel, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("attrition model: %w", err)
	}
	perf, err := modelstore.Load(ctx, cfg.PerformanceModel, loadOpts...)
	if err != nil {
		_ = attr.Close()
		return nil, fmt.Errorf("performance model: %w", err)
	}

	vocab := attr.Vocabulary
	switch {
	case vocab == nil:
		vocab = perf.Vocabulary
	case perf.Vocabulary != nil && perf.Vocabulary.Version != vocab.Version:
		_ = attr.Close()
		_ = perf.Close()
		return nil, fmt.Errorf("%w: attrition uses %q, performance uses %q",
			ErrVocabularyMismatch, vocab.Version, perf.Vocabulary.Version)
	}
	if vocab == nil && cfg.CategoricalEncoding == config.EncodingVocabulary {
		logger.Get().Named("service").Warn(ctx, "no vocabulary configured; text categories will be rejected",
			logger.String("attritionModel", attr.Manifest.Name),
			logger.String("performanceModel", perf.Manifest.Name),
		)
	}

	base := []Option{
		WithThresholds(retention.Thresholds{Attrition: cfg.AttritionThreshold, Performance: cfg.PerformanceThreshold}),
		WithEncoding(cfg.CategoricalEncoding),
		WithVocabulary(vocab),
		WithAdvisory(cfg.AdvisoryEnabled),
		WithExplainTopK(cfg.ExplainTopK),
		WithWorkerCount(cfg.BatchWorkers),
		WithCloser(attr.Close),
		WithCloser(perf.Close),
	}
	return New(attr.Model, perf.Model, append(base, opts...)...), nil
}
