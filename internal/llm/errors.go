package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyResponse indicates the service returned no result envelope.
	ErrEmptyResponse = errors.New("model returned an empty response")
	// ErrNoCandidates indicates the envelope contained zero candidate outputs.
	ErrNoCandidates = errors.New("model returned no candidates")
	// ErrSafetyBlocked indicates the output was withheld by a safety filter.
	ErrSafetyBlocked = errors.New("generation blocked by safety filter")
)

// UpstreamError wraps a failed call to the generative service with the model
// identifier it was issued against.
type UpstreamError struct {
	Model string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call to model %s failed: %v", e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
