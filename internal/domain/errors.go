package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the store.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing title, tenure end before start).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// NormalizationReason classifies why a raw trip record was rejected.
type NormalizationReason string

const (
	ReasonMissing           NormalizationReason = "missing"
	ReasonMalformed         NormalizationReason = "malformed"
	ReasonOutOfRange        NormalizationReason = "out_of_range"
	ReasonInvalidEnum       NormalizationReason = "invalid_enum"
	ReasonOrderingViolation NormalizationReason = "ordering_violation"
)

// NormalizationError identifies the first field of a raw trip record that
// failed validation. It unwraps to ErrValidation.
type NormalizationError struct {
	Field  string
	Reason NormalizationReason
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *NormalizationError) Unwrap() error {
	return ErrValidation
}
