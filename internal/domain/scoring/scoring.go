// Package scoring defines the contract for the two classification models and
// a pure-Go logistic backend.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/attriwatch/attriwatch/internal/domain/features"
)

// Model formats.
const (
	FormatONNX   = "onnx"
	FormatLinear = "linear"
)

// Model estimates the probability of the positive class for one feature
// vector. Implementations are read-only after construction and safe for
// concurrent use.
type Model interface {
	// Name identifies the model in logs, metrics and errors.
	Name() string
	// Schema is the ordered input layout the model expects.
	Schema() features.Schema
	// ScoreProbability returns P(positive class), honoring ctx for cancellation.
	ScoreProbability(ctx context.Context, v features.Vector) (float64, error)
}

// Info describes a loaded model artifact.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Format  string `json:"format"`
}

// Describer is implemented by models that know their artifact metadata.
type Describer interface {
	Info() Info
}

// Attributor is implemented by models that can attribute a score exactly,
// one signed contribution per feature in schema order.
type Attributor interface {
	Attributions(v features.Vector) ([]float64, error)
}

// Baseliner is implemented by models that carry reference feature values.
type Baseliner interface {
	Baseline() []float64
}

// Describe returns m's Info, falling back to its name.
func Describe(m Model) Info {
	if d, ok := m.(Describer); ok {
		return d.Info()
	}
	return Info{Name: m.Name()}
}

// Score runs m on v after checking the vector against the model schema.
// NaN results are rejected; anything else is clamped into [0,1].
func Score(ctx context.Context, m Model, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	if err := m.Schema().Check(v); err != nil {
		return 0, err
	}
	p, err := m.ScoreProbability(ctx, v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", m.Name(), err)
	}
	if math.IsNaN(p) {
		return 0, fmt.Errorf("%w: %s returned NaN", ErrInvalidProbability, m.Name())
	}
	return math.Max(0, math.Min(1, p)), nil
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
