package notion

import (
	"errors"
	"fmt"

	"github.com/jonathan/careerstack/internal/retry"
)

// ErrMissingSettings is returned when the integration secret or database id is not configured.
var ErrMissingSettings = errors.New("missing Notion settings: set notion.secret and notion.database_id")

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error returns the user-facing explanation of the failure.
func (e *APIError) Error() string {
	return retry.ReadableError(retry.SourceNotion, e.Status, e.Message)
}

// HTTPStatus implements retry.StatusError.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

// ParseError is a Notion response body that could not be decoded.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
