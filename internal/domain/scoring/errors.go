package scoring

import (
	"errors"
)

// Error kinds returned by models.
var (
	ErrInvalidProbability = errors.New("invalid probability")
	ErrInvalidModel       = errors.New("invalid model")
)
