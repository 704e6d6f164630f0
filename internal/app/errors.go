package service

import (
	"errors"
)

// Sentinel errors returned by the service.
var (
	ErrNotStarted         = errors.New("service not started")
	ErrVocabularyMismatch = errors.New("models use different vocabularies")
)
