// Package modelstore loads model manifests, vocabularies and artifacts from
// disk and turns them into scoring.Model values.
package modelstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
	"github.com/attriwatch/attriwatch/pkg/logger"
	"github.com/attriwatch/attriwatch/pkg/metrics"
	"gopkg.in/yaml.v3"
)

type loader struct {
	libraryPath string
	logger      logger.Logger
}

// Loaded is a ready model with its manifest and optional vocabulary.
type Loaded struct {
	Model      scoring.Model
	Manifest   Manifest
	Vocabulary *features.Vocabulary
}

// Close releases native resources held by the model, if any.
func (l *Loaded) Close() error {
	if c, ok := l.Model.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Load reads the manifest at path and builds its model. Relative artifact and
// vocabulary paths resolve against the manifest directory. Every failure is a
// *ModelLoadError.
func Load(ctx context.Context, path string, opts ...Option) (*Loaded, error) {
	l := &loader{}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get().Named("modelstore")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	fail := func(err error) (*Loaded, error) {
		return nil, &ModelLoadError{Model: manifest.Name, Path: path, Err: err}
	}
	dir := filepath.Dir(path)

	out := &Loaded{Manifest: manifest}
	if manifest.Vocabulary != "" {
		vocab, err := LoadVocabulary(resolve(dir, manifest.Vocabulary))
		if err != nil {
			return fail(err)
		}
		out.Vocabulary = vocab
	}

	switch manifest.Format {
	case scoring.FormatLinear:
		model, err := scoring.NewLinear(manifest.Name, manifest.Schema(),
			manifest.Linear.Intercept, manifest.Linear.Coefficients,
			scoring.WithVersion(manifest.Version),
			scoring.WithBaseline(manifest.Baseline),
		)
		if err != nil {
			return fail(err)
		}
		out.Model = model
	case scoring.FormatONNX:
		model, err := newONNXModel(manifest, resolve(dir, manifest.Artifact), l.libraryPath)
		if err != nil {
			return fail(err)
		}
		out.Model = model
	}

	metrics.SetModelInfo(manifest.Name, manifest.Version, manifest.Format)
	vocabVersion := ""
	if out.Vocabulary != nil {
		vocabVersion = out.Vocabulary.Version
	}
	l.logger.Info(ctx, "model loaded",
		logger.String("model", manifest.Name),
		logger.String("version", manifest.Version),
		logger.String("format", manifest.Format),
		logger.Int("features", len(manifest.Features)),
		logger.String("vocabulary", vocabVersion),
	)
	return out, nil
}

// LoadVocabulary reads a YAML vocabulary file.
func LoadVocabulary(path string) (*features.Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var v features.Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode vocabulary %s: %w", path, err)
	}
	if v.Version == "" {
		return nil, fmt.Errorf("vocabulary %s: version is required", path)
	}
	return &v, nil
}

// WriteVocabulary encodes v as YAML.
func WriteVocabulary(w io.Writer, v *features.Vocabulary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}
	return enc.Close()
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
