package features

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. The typed errors below match them with errors.Is.
var (
	ErrMissingField    = errors.New("missing field")
	ErrInvalidField    = errors.New("invalid field")
	ErrEncoding        = errors.New("encoding error")
	ErrFeatureMismatch = errors.New("feature mismatch")
	ErrMalformedRow    = errors.New("malformed row")
)

// MissingFieldError reports an absent required input.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is reports ErrMissingField.
func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// InvalidFieldError reports a present value outside its allowed domain.
type InvalidFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidField.
func (e *InvalidFieldError) Is(target error) bool { return target == ErrInvalidField }

// EncodingError reports a categorical value the active encoder cannot map.
type EncodingError struct {
	Field string
	Value string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode %q for field %q", e.Value, e.Field)
}

// Is reports ErrEncoding.
func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// MalformedRowError reports an input row with more cells than the header.
type MalformedRowError struct {
	Cells   int
	Columns int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row has %d cells but the header has %d columns", e.Cells, e.Columns)
}

// Is reports ErrMalformedRow.
func (e *MalformedRowError) Is(target error) bool { return target == ErrMalformedRow }

// FeatureMismatchError reports features a model expects but the input lacks,
// or a vector whose length differs from the model schema.
type FeatureMismatchError struct {
	Model   string
	Missing []string
	Want    int
	Got     int
}

func (e *FeatureMismatchError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("model %q: missing features: %s", e.Model, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("model %q: expected %d features, got %d", e.Model, e.Want, e.Got)
}

// Is reports ErrFeatureMismatch.
func (e *FeatureMismatchError) Is(target error) bool { return target == ErrFeatureMismatch }

// Field names the offending field for a derivation error, or "" when err
// carries none.
func Field(err error) string {
	var (
		missing  *MissingFieldError
		invalid  *InvalidFieldError
		encoding *EncodingError
		mismatch *FeatureMismatchError
	)
	switch {
	case errors.As(err, &missing):
		return missing.Field
	case errors.As(err, &invalid):
		return invalid.Field
	case errors.As(err, &encoding):
		return encoding.Field
	case errors.As(err, &mismatch):
		return strings.Join(mismatch.Missing, ",")
	}
	return ""
}

// Code returns the stable machine-readable code for a derivation error.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidField):
		return "invalid_field"
	case errors.Is(err, ErrEncoding):
		return "encoding_error"
	case errors.Is(err, ErrFeatureMismatch):
		return "feature_mismatch"
	case errors.Is(err, ErrMalformedRow):
		return "malformed_row"
	}
	return "internal"
}
