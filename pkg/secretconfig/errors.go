package secretconfig

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a resolution failure. Every kind is terminal.
type ErrorKind int

const (
	KindUnrecognizedFormat ErrorKind = iota + 1
	KindInvalidReference
	KindMalformedInline
	KindPayloadValidation
	KindStoreFetch
	KindNoSourceConfigured
	KindCancelled
)

// String returns the stable identifier of the kind, safe for logs and metrics labels.
func (k ErrorKind) String() string {
	switch k {
	case KindUnrecognizedFormat:
		return "unrecognized_format"
	case KindInvalidReference:
		return "invalid_reference"
	case KindMalformedInline:
		return "malformed_inline"
	case KindPayloadValidation:
		return "payload_validation"
	case KindStoreFetch:
		return "store_fetch"
	case KindNoSourceConfigured:
		return "no_source_configured"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (k ErrorKind) message() string {
	switch k {
	case KindUnrecognizedFormat:
		return "secret configuration is neither a secret ARN nor a JSON payload"
	case KindInvalidReference:
		return "secret reference is malformed"
	case KindMalformedInline:
		return "inline secret payload is not valid JSON"
	case KindPayloadValidation:
		return "secret payload failed validation"
	case KindStoreFetch:
		return "failed to fetch secret from Secrets Manager"
	case KindNoSourceConfigured:
		return "no secret configuration found"
	case KindCancelled:
		return "secret resolution was cancelled"
	default:
		return "secret resolution failed"
	}
}

// kindError is the sentinel type matched by ResolutionError.Is.
type kindError struct {
	kind ErrorKind
}

func (e *kindError) Error() string {
	return e.kind.message()
}

// Sentinels for errors.Is checks against a *ResolutionError.
var (
	ErrUnrecognizedFormat error = &kindError{KindUnrecognizedFormat}
	ErrInvalidReference   error = &kindError{KindInvalidReference}
	ErrMalformedInline    error = &kindError{KindMalformedInline}
	ErrPayloadValidation  error = &kindError{KindPayloadValidation}
	ErrStoreFetch         error = &kindError{KindStoreFetch}
	ErrNoSourceConfigured error = &kindError{KindNoSourceConfigured}
	ErrCancelled          error = &kindError{KindCancelled}
)

// ResolutionError is the single error type returned by the resolver.
//
// Source and Origin name the candidate the resolver committed to; they are empty for
// KindNoSourceConfigured. The error message never contains secret values.
type ResolutionError struct {
	Kind ErrorKind

	// Source is the kind of candidate that failed, SourceUnknown when none was selected.
	Source SourceKind

	// Origin is a human label for the candidate, e.g. "SECRET_CONFIG environment variable".
	Origin string

	// Format is the classification of the failing candidate, when it got that far.
	Format Format

	// Details adds context that is not tied to a single field.
	Details string

	// FieldErrors lists every violated rule for validation failures.
	FieldErrors []FieldError

	// Warnings carries non-fatal validator findings.
	Warnings []string

	// Err is the underlying cause (a *StoreFetchError, a JSON syntax error, a context error).
	Err error
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	if e.Origin != "" {
		b.WriteString(e.Origin)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.message())
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, fe := range e.FieldErrors {
			parts = append(parts, fe.String())
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind.
func (e *ResolutionError) Is(target error) bool {
	k, ok := target.(*kindError)
	return ok && k.kind == e.Kind
}

// Suggestion returns a remediation hint for the failure.
func (e *ResolutionError) Suggestion() string {
	switch e.Kind {
	case KindUnrecognizedFormat:
		return "Provide either a secret ARN (" + ReferenceShape + ") or a JSON object with tenant, clientId and clientSecret"
	case KindInvalidReference:
		return "Fix the listed segments; the expected shape is " + ReferenceShape
	case KindMalformedInline:
		return "Check for missing quotes, braces or trailing commas in the JSON payload"
	case KindPayloadValidation:
		return "Fix every listed field; required fields are tenant, clientId and clientSecret"
	case KindStoreFetch:
		if fe, ok := e.Err.(*StoreFetchError); ok {
			return fe.Hint()
		}
		return "Retry later and check connectivity to Secrets Manager"
	case KindNoSourceConfigured:
		return "Configure exactly one of the sources listed above"
	case KindCancelled:
		return "Re-run the command to resolve the secret configuration"
	}
	return ""
}

// FetchKind classifies a store lookup failure.
type FetchKind int

const (
	FetchUnavailable FetchKind = iota
	FetchNotFound
	FetchAccessDenied
)

func (k FetchKind) String() string {
	switch k {
	case FetchNotFound:
		return "not_found"
	case FetchAccessDenied:
		return "access_denied"
	default:
		return "unavailable"
	}
}

// StoreFetchError reports why the store could not return the referenced secret.
type StoreFetchError struct {
	Kind FetchKind

	// Reference is the masked reference that was looked up.
	Reference string

	Err error
}

func (e *StoreFetchError) Error() string {
	msg := fmt.Sprintf("secret %s: %s", e.Reference, strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreFetchError) Unwrap() error {
	return e.Err
}

// Hint returns the remediation for this kind of fetch failure.
func (e *StoreFetchError) Hint() string {
	switch e.Kind {
	case FetchNotFound:
		return "Check the reference: verify the secret name, region and account id with 'aws secretsmanager describe-secret'"
	case FetchAccessDenied:
		return "Check the access policy: the caller needs secretsmanager:GetSecretValue (and kms:Decrypt for customer-managed keys)"
	default:
		return "Retry later and check network connectivity to Secrets Manager"
	}
}
