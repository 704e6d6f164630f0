package scoring

import (
	"context"
	"fmt"

	"github.com/attriwatch/attriwatch/internal/domain/features"
)

// LinearOption applies a configuration option to a Linear model.
type LinearOption func(*Linear)

// WithVersion sets the artifact version reported by Info.
func WithVersion(version string) LinearOption {
	return func(l *Linear) {
		l.version = version
	}
}

// WithBaseline sets reference values per feature. Unlisted features keep 0.
func WithBaseline(baseline map[string]float64) LinearOption {
	return func(l *Linear) {
		for i, f := range l.schema.Features {
			if b, ok := baseline[f.Name]; ok {
				l.baseline[i] = b
			}
		}
	}
}

// Linear is a logistic regression: P = sigmoid(intercept + w·x).
type Linear struct {
	name      string
	version   string
	schema    features.Schema
	intercept float64
	weights   []float64
	baseline  []float64
}

// NewLinear builds a logistic model. Every schema feature needs a
// coefficient and every coefficient must name a schema feature.
func NewLinear(name string, schema features.Schema, intercept float64, coefficients map[string]float64, opts ...LinearOption) (*Linear, error) {
	if len(schema.Features) == 0 {
		return nil, fmt.Errorf("%w: %s: empty schema", ErrInvalidModel, name)
	}
	if len(coefficients) != len(schema.Features) {
		return nil, fmt.Errorf("%w: %s: %d coefficients for %d features",
			ErrInvalidModel, name, len(coefficients), len(schema.Features))
	}
	l := &Linear{
		name:      name,
		schema:    schema,
		intercept: intercept,
		weights:   make([]float64, len(schema.Features)),
		baseline:  make([]float64, len(schema.Features)),
	}
	l.schema.Model = name
	for i, f := range schema.Features {
		w, ok := coefficients[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s: no coefficient for %q", ErrInvalidModel, name, f.Name)
		}
		l.weights[i] = w
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name implements Model.
func (l *Linear) Name() string { return l.name }

// Schema implements Model.
func (l *Linear) Schema() features.Schema { return l.schema }

// Info implements Describer.
func (l *Linear) Info() Info {
	return Info{Name: l.name, Version: l.version, Format: FormatLinear}
}

// Baseline implements Baseliner.
func (l *Linear) Baseline() []float64 {
	out := make([]float64, len(l.baseline))
	copy(out, l.baseline)
	return out
}

// ScoreProbability implements Model.
func (l *Linear) ScoreProbability(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	if v.Len() != len(l.weights) {
		return 0, &features.FeatureMismatchError{Model: l.name, Want: len(l.weights), Got: v.Len()}
	}
	return Sigmoid(l.logit(v.Values)), nil
}

// Attributions implements Attributor: w_i * (x_i - baseline_i), in logit space.
func (l *Linear) Attributions(v features.Vector) ([]float64, error) {
	if v.Len() != len(l.weights) {
		return nil, &features.FeatureMismatchError{Model: l.name, Want: len(l.weights), Got: v.Len()}
	}
	out := make([]float64, len(l.weights))
	for i, w := range l.weights {
		out[i] = w * (v.Values[i] - l.baseline[i])
	}
	return out, nil
}

func (l *Linear) logit(x []float64) float64 {
	z := l.intercept
	for i, w := range l.weights {
		z += w * x[i]
	}
	return z
}
