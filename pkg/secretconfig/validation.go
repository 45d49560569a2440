package secretconfig

import (
	"fmt"
	"strings"
)

// FieldError describes a single violated rule.
type FieldError struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// String renders the error as "field: message".
func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the outcome of a validator. Errors block resolution, warnings never do.
type ValidationResult struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Summary joins all error messages on one line.
func (r ValidationResult) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// validationBuilder accumulates violations and produces an immutable ValidationResult.
type validationBuilder struct {
	errors   []FieldError
	warnings []string
}

func (b *validationBuilder) fail(field, message, suggestion string) {
	b.errors = append(b.errors, FieldError{Field: field, Message: message, Suggestion: suggestion})
}

func (b *validationBuilder) warn(format string, args ...interface{}) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *validationBuilder) result() ValidationResult {
	return ValidationResult{
		Valid:    len(b.errors) == 0,
		Errors:   b.errors,
		Warnings: b.warnings,
	}
}
