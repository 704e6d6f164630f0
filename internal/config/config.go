// Package config defines service configuration and its defaults.
//
// Conventions:
//   - New() returns the defaults; Load layers a YAML file and env vars on top.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"runtime"
)

// Categorical encoding modes.
const (
	EncodingVocabulary = "vocabulary"
	EncodingFactorize  = "factorize"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// AttritionThreshold and PerformanceThreshold are the default cutoffs;
	// requests may override them.
	AttritionThreshold   float64 `koanf:"attrition_threshold"`
	PerformanceThreshold float64 `koanf:"performance_threshold"`

	// AttritionModel and PerformanceModel are manifest paths.
	AttritionModel   string `koanf:"attrition_model"`
	PerformanceModel string `koanf:"performance_model"`
	// ONNXRuntimeLibrary overrides onnxruntime shared library discovery.
	ONNXRuntimeLibrary string `koanf:"onnxruntime_library"`

	// CategoricalEncoding is "vocabulary" or "factorize".
	CategoricalEncoding string `koanf:"categorical_encoding"`

	// AdvisoryEnabled turns on attribution and advice for priority records.
	AdvisoryEnabled bool `koanf:"advisory_enabled"`
	// ExplainTopK bounds the number of attribution entries.
	ExplainTopK int `koanf:"explain_top_k"`

	// BatchWorkers bounds parallel row scoring within one batch.
	BatchWorkers int `koanf:"batch_workers"`
	// MaxUploadBytes caps CSV uploads.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		AttritionThreshold:   0.56,
		PerformanceThreshold: 0.50,
		AttritionModel:       "models/attrition.yaml",
		PerformanceModel:     "models/performance.yaml",
		CategoricalEncoding:  EncodingVocabulary,
		AdvisoryEnabled:      true,
		ExplainTopK:          5,
		BatchWorkers:         runtime.NumCPU(),
		MaxUploadBytes:       10 << 20,
	}
}
