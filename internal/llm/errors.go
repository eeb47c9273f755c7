package llm

import (
	"errors"
	"fmt"

	"github.com/jonathan/careerstack/internal/retry"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured for the selected provider.
	ErrMissingAPIKey = errors.New("missing AI API key: set ai.api_key in your config")
	// ErrMissingResume is returned when analysis is requested without a master resume.
	ErrMissingResume = errors.New("missing master resume: set resume_path in your config")
)

// APICallError is a failed call to the provider API.
// Status is the HTTP status of the failure, or 0 when no response was received.
type APICallError struct {
	Provider Provider
	Status   int
	Message  string
	Cause    error
}

func (e *APICallError) Error() string {
	if e.Status > 0 {
		return retry.ReadableError(retry.SourceAI, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s request failed: %v", e.Provider.displayName(), e.Cause)
	}
	return fmt.Sprintf("%s request failed", e.Provider.displayName())
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// HTTPStatus implements retry.StatusError.
func (e *APICallError) HTTPStatus() int {
	return e.Status
}

// ParseError is a provider response that is not a valid analysis.
type ParseError struct {
	Provider Provider
	Raw      string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse %s response: %v", e.Provider.displayName(), e.Cause)
	}
	return fmt.Sprintf("failed to parse %s response", e.Provider.displayName())
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
