package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	envPrefix     = "ATTRIWATCH_"
	envConfigFile = "ATTRIWATCH_CONFIG"
)

// LoadOption adjusts how Load finds its inputs.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file string
}

// WithFile names the YAML file explicitly, taking precedence over
// ATTRIWATCH_CONFIG. An empty path keeps the env lookup.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file from WithFile, or ATTRIWATCH_CONFIG when set
//  3. env (prefix ATTRIWATCH_)
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{file: os.Getenv(envConfigFile)}
	for _, opt := range opts {
		opt(&o)
	}
	base := New()
	k := koanf.New(".")

	if path := o.file; path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ATTRIWATCH_ATTRITION_THRESHOLD -> attrition_threshold; underscores are kept
	// so keys match the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and required settings.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return invalid("addr must not be empty")
	case c.AttritionThreshold < 0 || c.AttritionThreshold > 1:
		return invalid("attrition_threshold must be within [0,1], got %v", c.AttritionThreshold)
	case c.PerformanceThreshold < 0 || c.PerformanceThreshold > 1:
		return invalid("performance_threshold must be within [0,1], got %v", c.PerformanceThreshold)
	case strings.TrimSpace(c.AttritionModel) == "":
		return invalid("attrition_model must not be empty")
	case strings.TrimSpace(c.PerformanceModel) == "":
		return invalid("performance_model must not be empty")
	case c.CategoricalEncoding != EncodingVocabulary && c.CategoricalEncoding != EncodingFactorize:
		return invalid("categorical_encoding must be %q or %q, got %q", EncodingVocabulary, EncodingFactorize, c.CategoricalEncoding)
	case c.ExplainTopK < 1:
		return invalid("explain_top_k must be positive, got %d", c.ExplainTopK)
	case c.MaxUploadBytes < 1:
		return invalid("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
