package service

import (
	"errors"
	"fmt"
)

// ErrSuperseded is returned by a generation that a newer one for the same
// draft replaced before it finished.
var ErrSuperseded = errors.New("generation superseded by a newer request")

// ValidationError reports missing or malformed user input. Nothing was sent
// to any remote service.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Recorder receives outcome counts. metrics.Metrics satisfies it.
type Recorder interface {
	RecordGeneration(result string, seconds float64, skipped int)
	RecordSubmission(result string)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(string, float64, int) {}
func (nopRecorder) RecordSubmission(string)               {}
