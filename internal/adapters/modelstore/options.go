package modelstore

import (
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// Option applies a configuration option to Load.
type Option func(*loader)

// WithLibraryPath sets the onnxruntime shared library location. The
// ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable still takes precedence.
func WithLibraryPath(path string) Option {
	return func(l *loader) {
		l.libraryPath = path
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger logger.Logger) Option {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}
