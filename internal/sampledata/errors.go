package sampledata

import "errors"

// Error kinds.
var (
	ErrInvalidConfig = errors.New("invalid sample config")
	ErrSubmit        = errors.New("submit failed")
	ErrVerify        = errors.New("verification failed")
)
