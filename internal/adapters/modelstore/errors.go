package modelstore

import (
	"errors"
	"fmt"
)

// ErrModelLoad matches every *ModelLoadError.
var ErrModelLoad = errors.New("model load failed")

// ModelLoadError reports a model artifact that could not be read or built.
type ModelLoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *ModelLoadError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("load model from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("load model %q from %s: %v", e.Model, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ModelLoadError) Unwrap() error { return e.Err }

// Is reports ErrModelLoad.
func (e *ModelLoadError) Is(target error) bool { return target == ErrModelLoad }
