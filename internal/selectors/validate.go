package selectors

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

var lintedFields = []string{FieldPosition, FieldCompany, FieldCompanyURL, FieldSalary, FieldDescription, FieldAppLink}

// Parse validates raw JSON against the document schema and decodes it.
// Documents without a version or either platform key are rejected.
func Parse(data []byte) (*Document, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &ConfigError{
			Source:  "(document)",
			Message: "not valid JSON",
			Cause:   err,
		}
	}

	if !result.Valid() {
		validationErr := &ValidationError{
			Errors: make([]FieldError, 0, len(result.Errors())),
		}
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			validationErr.Errors = append(validationErr.Errors, FieldError{
				Field:   field,
				Message: desc.Description(),
			})
		}
		return nil, validationErr
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{
			Source:  "(document)",
			Message: "failed to decode",
			Cause:   err,
		}
	}
	return &doc, nil
}

// Lint compiles every selector in the document and reports the ones a CSS engine would reject.
// Invalid selectors never match, so a linted document is still usable.
func Lint(doc *Document) []FieldError {
	var problems []FieldError
	platforms := []struct {
		name   string
		fields FieldSelectors
	}{
		{"linkedin", doc.LinkedIn},
		{"indeed", doc.Indeed},
	}

	for _, p := range platforms {
		for _, name := range lintedFields {
			for i, sel := range p.fields.Field(name) {
				field := fmt.Sprintf("%s.%s.%d", p.name, name, i)
				if strings.TrimSpace(sel) == "" {
					problems = append(problems, FieldError{Field: field, Message: "empty selector"})
					continue
				}
				if _, err := cascadia.Compile(sel); err != nil {
					problems = append(problems, FieldError{Field: field, Message: err.Error()})
				}
			}
		}
	}
	return problems
}

// Validate runs Parse and Lint together, failing on any problem. Used for documents about to be published.
func Validate(data []byte) (*Document, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if problems := Lint(doc); len(problems) > 0 {
		return doc, &ValidationError{Errors: problems}
	}
	var missing []FieldError
	for _, name := range doc.LinkedIn.MissingFields() {
		missing = append(missing, FieldError{Field: "linkedin." + name, Message: "at least one selector is required"})
	}
	for _, name := range doc.Indeed.MissingFields() {
		missing = append(missing, FieldError{Field: "indeed." + name, Message: "at least one selector is required"})
	}
	if len(missing) > 0 {
		return doc, &ValidationError{Errors: missing}
	}
	return doc, nil
}
