package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/careerstack/internal/db"
	"github.com/jonathan/careerstack/internal/fetch"
	"github.com/jonathan/careerstack/internal/llm"
	"github.com/jonathan/careerstack/internal/notion"
	"github.com/jonathan/careerstack/internal/selectors"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotConfigured indicates the server was started without a feature an endpoint needs.
type ErrNotConfigured struct {
	Feature string
	Hint    string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("%s is not configured: %s", e.Feature, e.Hint)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation    *ErrValidation
		fields        validator.ValidationErrors
		selectorErr   *selectors.ValidationError
		notConfigured *ErrNotConfigured
		fetchErr      *fetch.Error
		notionErr     *notion.APIError
		notionParse   *notion.ParseError
		llmErr        *llm.APICallError
		llmParse      *llm.ParseError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &fields), errors.As(err, &selectorErr):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrSavedJobNotFound):
		return http.StatusNotFound
	case errors.As(err, &notConfigured),
		errors.Is(err, notion.ErrMissingSettings),
		errors.Is(err, llm.ErrMissingAPIKey),
		errors.Is(err, llm.ErrMissingResume):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetchErr),
		errors.As(err, &notionErr), errors.As(err, &notionParse),
		errors.As(err, &llmErr), errors.As(err, &llmParse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
