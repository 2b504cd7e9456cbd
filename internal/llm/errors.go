package llm

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned by every call on a client built without credentials.
var ErrMissingAPIKey = errors.New("API key is required")

// ErrEmptyResponse is returned when the model produced no usable content.
var ErrEmptyResponse = errors.New("model returned no content")

// APICallError represents a failed round trip to the model provider.
type APICallError struct {
	Op         string
	Model      string
	StatusCode int
	Cause      error
}

func (e *APICallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s call to %s failed with status %d: %v", e.Op, e.Model, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s call to %s failed: %v", e.Op, e.Model, e.Cause)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
