// Package discovery looks up a published secret configuration value when no local
// source supplies one.
package discovery

import (
	"context"
)

// Discoverer finds a secret configuration value published somewhere outside the process.
// A value that simply does not exist is reported as found == false with a nil error.
type Discoverer interface {
	// Name describes where the value comes from, e.g. "SSM parameter /app/secret-config".
	Name() string
	Discover(ctx context.Context) (value string, found bool, err error)
}

// Result is the outcome of a successful lookup.
type Result struct {
	Origin string
	Value  string
}

// LookupError wraps a discoverer failure with the discoverer's name.
type LookupError struct {
	Origin string
	Err    error
}

func (e *LookupError) Error() string {
	return "discovery via " + e.Origin + " failed: " + e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// First queries discoverers in order and returns the first value found. A failing
// discoverer stops the lookup.
func First(ctx context.Context, discoverers ...Discoverer) (Result, bool, error) {
	for _, d := range discoverers {
		if err := ctx.Err(); err != nil {
			return Result{}, false, err
		}
		value, found, err := d.Discover(ctx)
		if err != nil {
			return Result{}, false, &LookupError{Origin: d.Name(), Err: err}
		}
		if found {
			return Result{Origin: d.Name(), Value: value}, true, nil
		}
	}
	return Result{}, false, nil
}
