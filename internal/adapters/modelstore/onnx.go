package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/internal/domain/scoring"
	ort "github.com/yalue/onnxruntime_go"
)

// onnxMu guards one-time runtime environment setup.
var onnxMu sync.Mutex

// onnxModel runs a tabular classifier exported to ONNX with a [1,N] float32
// input. The session and its bound tensors are shared, so Run is serialized.
type onnxModel struct {
	info      scoring.Info
	schema    features.Schema
	baseline  []float64
	transform string
	positive  int

	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]

	mu sync.Mutex
}

func newONNXModel(m Manifest, artifactPath, libraryPath string) (*onnxModel, error) {
	if _, err := os.Stat(artifactPath); err != nil {
		return nil, fmt.Errorf("artifact missing at %s: %w", artifactPath, err)
	}
	if err := initRuntime(libraryPath, filepath.Dir(artifactPath)); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(m.Features))))
	if err != nil {
		return nil, fmt.Errorf("allocate input tensor: %w", err)
	}
	width := int64(2)
	if m.OutputTransform == TransformSigmoid {
		width = 1
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, width))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(
		artifactPath,
		[]string{m.Input},
		[]string{m.Output},
		[]ort.Value{input},
		[]ort.Value{output},
		nil,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &onnxModel{
		info:      scoring.Info{Name: m.Name, Version: m.Version, Format: scoring.FormatONNX},
		schema:    m.Schema(),
		baseline:  m.BaselineVector(),
		transform: m.OutputTransform,
		positive:  m.Positive(),
		session:   session,
		input:     input,
		output:    output,
	}, nil
}

func (o *onnxModel) Name() string            { return o.info.Name }
func (o *onnxModel) Schema() features.Schema { return o.schema }
func (o *onnxModel) Info() scoring.Info      { return o.info }

func (o *onnxModel) Baseline() []float64 {
	out := make([]float64, len(o.baseline))
	copy(out, o.baseline)
	return out
}

func (o *onnxModel) ScoreProbability(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context cancelled: %w", err)
	}
	if v.Len() != len(o.schema.Features) {
		return 0, &features.FeatureMismatchError{Model: o.info.Name, Want: len(o.schema.Features), Got: v.Len()}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	data := o.input.GetData()
	for i, x := range v.Values {
		data[i] = float32(x)
	}
	if err := o.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}
	out := o.output.GetData()
	if o.transform == TransformSigmoid {
		return scoring.Sigmoid(float64(out[0])), nil
	}
	return float64(out[o.positive]), nil
}

func (o *onnxModel) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	var errs []string
	for _, d := range []interface{ Destroy() error }{o.session, o.input, o.output} {
		if err := d.Destroy(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("destroy onnx resources: %s", strings.Join(errs, "; "))
	}
	return nil
}

func initRuntime(configured, artifactDir string) error {
	onnxMu.Lock()
	defer onnxMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	libPath := resolveSharedLibraryPath(configured, artifactDir)
	if libPath == "" {
		return fmt.Errorf("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or onnxruntime_library")
	}
	ort.SetSharedLibraryPath(libPath)
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// resolveSharedLibraryPath locates the onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins, then the configured path, then
// common names in the artifact directory and system locations.
func resolveSharedLibraryPath(configured, artifactDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}
	if configured = strings.TrimSpace(configured); configured != "" {
		return configured
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		artifactDir,
		filepath.Join(artifactDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}
	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
