package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// ExitCancelled is the conventional exit status after SIGINT.
const ExitCancelled = 130

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

// Report renders err as the multi-line report printed by the CLI: the message, one bullet
// per field error, warnings, and a suggestion. Errors that are not resolution errors are
// simplified and printed as-is.
func Report(err error) string {
	if err == nil {
		return ""
	}

	var re *secretconfig.ResolutionError
	if !errors.As(err, &re) {
		return SimplifyError(err).Error()
	}

	var b strings.Builder
	b.WriteString(capitalize(re.Kind.String()))
	if re.Origin != "" {
		b.WriteString(" in " + re.Origin)
	}
	b.WriteString("\n  " + describe(re) + "\n")

	if len(re.FieldErrors) > 0 {
		b.WriteString("\n  Problems:\n")
		for _, fe := range re.FieldErrors {
			b.WriteString("    • " + fe.String() + "\n")
			if fe.Suggestion != "" {
				b.WriteString("      ↳ " + fe.Suggestion + "\n")
			}
		}
	}

	if len(re.Warnings) > 0 {
		b.WriteString("\n  Warnings:\n")
		for _, w := range re.Warnings {
			b.WriteString("    ⚠ " + w + "\n")
		}
	}

	if s := re.Suggestion(); s != "" {
		b.WriteString("\n  💡 Try: " + s + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, secretconfig.ErrCancelled):
		return ExitCancelled
	default:
		return 1
	}
}

// Kind returns the resolution error kind identifier, or "internal" for other errors. It is
// the only part of a resolution failure the service logs.
func Kind(err error) string {
	var re *secretconfig.ResolutionError
	if errors.As(err, &re) {
		return re.Kind.String()
	}
	return "internal"
}

// describe returns the one-line description of a resolution error without the origin
// prefix and field list that Error() adds.
func describe(re *secretconfig.ResolutionError) string {
	if re.Kind == secretconfig.KindNoSourceConfigured {
		lines := []string{"No secret configuration found. Set one of:"}
		if idx := strings.Index(re.Details, ": "); idx >= 0 {
			for _, opt := range strings.Split(re.Details[idx+2:], "; ") {
				lines = append(lines, "    - "+opt)
			}
		}
		return strings.Join(lines, "\n")
	}

	msg := (&secretconfig.ResolutionError{Kind: re.Kind, Details: re.Details}).Error()
	return capitalize(msg)
}

func capitalize(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// SimplifyError simplifies complex error messages for users
func SimplifyError(err error) error {
	if err == nil {
		return nil
	}

	// Unwrap to get the root cause
	rootErr := err
	for {
		unwrapped := errors.Unwrap(rootErr)
		if unwrapped == nil {
			break
		}
		rootErr = unwrapped
	}

	// Already a user-friendly error
	if _, ok := err.(UserError); ok {
		return err
	}
	if _, ok := err.(ConfigError); ok {
		return err
	}

	errStr := rootErr.Error()

	if strings.Contains(errStr, "yaml:") {
		return ConfigError{
			Message:    "Invalid YAML format",
			Suggestion: "Check for indentation errors and missing quotes",
		}
	}

	if strings.Contains(errStr, "permission denied") {
		return UserError{
			Message:    "Permission denied",
			Suggestion: "Check file permissions or run with appropriate privileges",
			Err:        err,
		}
	}

	if strings.Contains(errStr, "no such file or directory") {
		return UserError{
			Message:    "File or directory not found",
			Suggestion: "Verify the path exists and is spelled correctly",
			Err:        err,
		}
	}

	return err
}
