package secretconfig

import (
	"context"
	"errors"
)

// StoreClient fetches the raw secret string a reference points at.
//
// Implementations own their transport, connection pooling and retry policy. They must
// honour ctx cancellation and should report missing secrets with *NotFoundError and
// permission failures with *AccessDeniedError; any other error is treated as the store
// being unavailable.
type StoreClient interface {
	Get(ctx context.Context, ref StoreReference) ([]byte, error)
}

// StoreClientFunc adapts a function to StoreClient.
type StoreClientFunc func(ctx context.Context, ref StoreReference) ([]byte, error)

// Get calls f.
func (f StoreClientFunc) Get(ctx context.Context, ref StoreReference) ([]byte, error) {
	return f(ctx, ref)
}

// NotFoundError indicates the referenced secret does not exist.
type NotFoundError struct {
	Key string
	Err error
}

func (e *NotFoundError) Error() string {
	return "secret not found: " + e.Key
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// AccessDeniedError indicates the caller is not allowed to read the secret.
type AccessDeniedError struct {
	Key     string
	Message string
	Err     error
}

func (e *AccessDeniedError) Error() string {
	if e.Message != "" {
		return "access denied to " + e.Key + ": " + e.Message
	}
	return "access denied to " + e.Key
}

func (e *AccessDeniedError) Unwrap() error {
	return e.Err
}

// classifyFetch maps a store failure to a FetchKind. The second result is true when the
// failure is a cancellation by the caller rather than a store problem.
func classifyFetch(parent context.Context, err error) (FetchKind, bool) {
	if errors.Is(parent.Err(), context.Canceled) {
		return FetchUnavailable, true
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return FetchNotFound, false
	}
	var denied *AccessDeniedError
	if errors.As(err, &denied) {
		return FetchAccessDenied, false
	}
	return FetchUnavailable, false
}
