package secretconfig

import (
	"strings"
)

// Format identifies how a raw candidate value encodes the credentials.
type Format int

const (
	// FormatUnrecognized is never returned alongside a nil error.
	FormatUnrecognized Format = iota
	// FormatReference is a pointer to a secret held in the remote store.
	FormatReference
	// FormatInline is a structured payload carrying the credentials directly.
	FormatInline
)

// String returns the format name used in messages.
func (f Format) String() string {
	switch f {
	case FormatReference:
		return "reference"
	case FormatInline:
		return "inline"
	default:
		return "unrecognized"
	}
}

// referenceScheme is the lexical marker that every store reference starts with.
const referenceScheme = "arn:"

// previewLength bounds how much of an unrecognized input is echoed back.
const previewLength = 50

// Classify decides whether raw is a store reference or an inline payload.
//
// It performs no I/O and does not validate. Plausible but malformed values (an ARN for the
// wrong service, a truncated JSON object) are classified so that the matching validator
// can report a precise error.
func Classify(raw string) (Format, error) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return FormatUnrecognized, &ResolutionError{
			Kind:    KindUnrecognizedFormat,
			Details: "value is empty",
		}
	case strings.HasPrefix(trimmed, referenceScheme):
		return FormatReference, nil
	case strings.HasPrefix(trimmed, "{"):
		return FormatInline, nil
	}

	return FormatUnrecognized, &ResolutionError{
		Kind:    KindUnrecognizedFormat,
		Details: "value starts with " + quotePreview(trimmed),
	}
}

// quotePreview returns the first previewLength runes of s, quoted.
func quotePreview(s string) string {
	runes := []rune(s)
	if len(runes) > previewLength {
		return `"` + string(runes[:previewLength]) + `..."`
	}
	return `"` + s + `"`
}
