package selectors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedConfig is returned when a selector document is missing version or a platform key.
var ErrMalformedConfig = errors.New("malformed selector configuration")

// ConfigError represents a failure to load or parse a selector document.
type ConfigError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("selector config %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("selector config %s: %s", e.Source, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every schema or selector-syntax problem found in a document.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Unwrap lets callers test for ErrMalformedConfig with errors.Is.
func (ve *ValidationError) Unwrap() error {
	return ErrMalformedConfig
}
