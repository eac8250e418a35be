package models

import "errors"

// Sentinel errors shared by the pipeline stages.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrValidation indicates malformed input, manifest or result JSON, or a
	// missing required field. Not retryable.
	ErrValidation = errors.New("validation error")

	// ErrExternalService indicates an extraction job ended FAILED or STOPPED.
	// The pipeline for that corpus cannot continue.
	ErrExternalService = errors.New("external service error")

	// ErrNotFound indicates a missing object or an object with an empty body.
	ErrNotFound = errors.New("object not found")
)
