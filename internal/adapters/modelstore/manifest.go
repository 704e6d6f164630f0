package modelstore

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
	"gopkg.in/yaml.v3"
)

// Output transforms for ONNX models.
const (
	TransformProbabilities = "probabilities"
	TransformSigmoid       = "sigmoid"
)

// Manifest describes one model artifact and its input layout.
type Manifest struct {
	Name            string             `yaml:"name"`
	Version         string             `yaml:"version"`
	Format          string             `yaml:"format"`
	Artifact        string             `yaml:"artifact,omitempty"`
	Input           string             `yaml:"input,omitempty"`
	Output          string             `yaml:"output,omitempty"`
	OutputTransform string             `yaml:"output_transform,omitempty"`
	PositiveClass   *int               `yaml:"positive_class,omitempty"`
	Vocabulary      string             `yaml:"vocabulary,omitempty"`
	Features        []features.Feature `yaml:"features"`
	Baseline        map[string]float64 `yaml:"baseline,omitempty"`
	Linear          *LinearParams      `yaml:"linear,omitempty"`
}

// LinearParams holds logistic regression coefficients.
type LinearParams struct {
	Intercept    float64            `yaml:"intercept"`
	Coefficients map[string]float64 `yaml:"coefficients"`
}

// ParseManifest decodes and validates a manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	m.applyDefaults()
	if err := m.validate(); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// Schema returns the model's input schema.
func (m Manifest) Schema() features.Schema {
	return features.Schema{Model: m.Name, Features: m.Features}
}

// BaselineVector returns baseline values in schema order, 0 when unset.
func (m Manifest) BaselineVector() []float64 {
	out := make([]float64, len(m.Features))
	for i, f := range m.Features {
		out[i] = m.Baseline[f.Name]
	}
	return out
}

func (m *Manifest) applyDefaults() {
	if m.Input == "" {
		m.Input = "float_input"
	}
	if m.Output == "" {
		m.Output = "probabilities"
	}
	if m.OutputTransform == "" {
		m.OutputTransform = TransformProbabilities
	}
}

// Positive returns the index of the positive class column, default 1.
func (m Manifest) Positive() int {
	if m.PositiveClass == nil {
		return 1
	}
	return *m.PositiveClass
}

func (m Manifest) validate() error {
	if m.Name == "" {
		return errors.New("manifest: name is required")
	}
	if len(m.Features) == 0 {
		return errors.New("manifest: features must not be empty")
	}
	seen := make(map[string]struct{}, len(m.Features))
	for _, f := range m.Features {
		if f.Name == "" {
			return errors.New("manifest: feature with empty name")
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("manifest: duplicate feature %q", f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	switch m.Format {
	case scoring.FormatLinear:
		if m.Linear == nil {
			return errors.New("manifest: linear format requires a linear section")
		}
	case scoring.FormatONNX:
		if m.Artifact == "" {
			return errors.New("manifest: onnx format requires an artifact")
		}
		switch m.OutputTransform {
		case TransformProbabilities:
			if p := m.Positive(); p < 0 || p > 1 {
				return fmt.Errorf("manifest: positive_class must be 0 or 1, got %d", p)
			}
		case TransformSigmoid:
		default:
			return fmt.Errorf("manifest: unknown output_transform %q", m.OutputTransform)
		}
	default:
		return fmt.Errorf("manifest: unknown format %q", m.Format)
	}
	return nil
}
