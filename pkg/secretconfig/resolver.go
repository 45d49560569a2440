package secretconfig

import (
	"context"
	"errors"
	"strings"
	"time"
)

// DefaultFetchTimeout bounds the single store call made by a resolution.
const DefaultFetchTimeout = 5 * time.Second

// ResolvedSecretConfig is the effective configuration produced by a resolution.
//
// For FormatInline, Payload is set and Reference is nil. For FormatReference, Reference
// is set and Payload holds the validated secret fetched from the store.
type ResolvedSecretConfig struct {
	Format     Format
	Reference  *StoreReference
	Payload    *SecretPayload
	Provenance SourceKind

	// Origin labels the candidate that produced this configuration.
	Origin string

	// Warnings are non-fatal validator findings, e.g. unknown payload fields.
	Warnings []string

	// RawInputEcho is the raw candidate value, kept for error context only. It must not
	// be logged or displayed.
	RawInputEcho string `json:"-"`
}

// String renders the configuration masked.
func (c ResolvedSecretConfig) String() string {
	return Mask(c)
}

// GoString implements fmt.GoStringer for %#v.
func (c ResolvedSecretConfig) GoString() string {
	return Mask(c)
}

// Resolver applies precedence to candidate sources and produces one configuration.
//
// A Resolver holds no state between calls and is safe for concurrent use if its
// StoreClient is.
type Resolver struct {
	store        StoreClient
	fetchTimeout time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFetchTimeout overrides DefaultFetchTimeout. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.fetchTimeout = d
		}
	}
}

// NewResolver creates a resolver that fetches references through store. store may be nil
// when only inline and legacy sources are expected; resolving a reference then fails as
// unavailable.
func NewResolver(store StoreClient, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		store:        store,
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a shorthand for NewResolver(store).Resolve(ctx, candidates).
func Resolve(ctx context.Context, candidates []CandidateSource, store StoreClient) (ResolvedSecretConfig, error) {
	return NewResolver(store).Resolve(ctx, candidates)
}

// Resolve commits to the highest-precedence present candidate and evaluates it.
//
// A present but invalid candidate is returned as an error; lower-precedence candidates are
// never consulted once a higher one is present. The store is called at most once.
func (r *Resolver) Resolve(ctx context.Context, candidates []CandidateSource) (ResolvedSecretConfig, error) {
	selected, ok := Select(candidates)
	if !ok {
		return ResolvedSecretConfig{}, noSourceError(candidates)
	}

	if selected.Kind == LegacyDiscreteFields {
		return r.resolveLegacy(selected)
	}

	format, err := Classify(selected.Raw)
	if err != nil {
		return ResolvedSecretConfig{}, attribute(err.(*ResolutionError), selected, FormatUnrecognized)
	}

	switch format {
	case FormatReference:
		return r.resolveReference(ctx, selected)
	default:
		return r.resolveInline(selected)
	}
}

// Select returns the candidate the resolver commits to: the first present candidate of
// the highest-precedence kind. Within a kind, caller order wins.
func Select(candidates []CandidateSource) (CandidateSource, bool) {
	for _, kind := range Precedence {
		for _, c := range candidates {
			if c.Kind == kind && c.Present() {
				return c, true
			}
		}
	}
	return CandidateSource{}, false
}

func (r *Resolver) resolveLegacy(c CandidateSource) (ResolvedSecretConfig, error) {
	payload, result := NewPayload(c.Legacy.legacyData())
	if !result.Valid {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:        KindPayloadValidation,
			Source:      c.Kind,
			Origin:      c.Label(),
			Format:      FormatInline,
			FieldErrors: result.Errors,
			Warnings:    result.Warnings,
		}
	}

	return ResolvedSecretConfig{
		Format:     FormatInline,
		Payload:    &payload,
		Provenance: c.Kind,
		Origin:     c.Label(),
		Warnings:   result.Warnings,
	}, nil
}

func (r *Resolver) resolveInline(c CandidateSource) (ResolvedSecretConfig, error) {
	data, err := ParseInline(c.Raw)
	if err != nil {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:    KindMalformedInline,
			Source:  c.Kind,
			Origin:  c.Label(),
			Format:  FormatInline,
			Details: err.Error(),
			Err:     err,
		}
	}

	payload, result := NewPayload(data)
	if !result.Valid {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:        KindPayloadValidation,
			Source:      c.Kind,
			Origin:      c.Label(),
			Format:      FormatInline,
			FieldErrors: result.Errors,
			Warnings:    result.Warnings,
		}
	}

	return ResolvedSecretConfig{
		Format:       FormatInline,
		Payload:      &payload,
		Provenance:   c.Kind,
		Origin:       c.Label(),
		Warnings:     result.Warnings,
		RawInputEcho: strings.TrimSpace(c.Raw),
	}, nil
}

func (r *Resolver) resolveReference(ctx context.Context, c CandidateSource) (ResolvedSecretConfig, error) {
	ref, result := ParseReference(c.Raw)
	if !result.Valid {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:        KindInvalidReference,
			Source:      c.Kind,
			Origin:      c.Label(),
			Format:      FormatReference,
			FieldErrors: result.Errors,
		}
	}

	raw, fetchErr := r.fetch(ctx, ref)
	if fetchErr != nil {
		return ResolvedSecretConfig{}, attribute(fetchErr, c, FormatReference)
	}

	data, err := ParseInline(string(raw))
	if err != nil {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:    KindMalformedInline,
			Source:  c.Kind,
			Origin:  c.Label(),
			Format:  FormatReference,
			Details: "secret stored at " + MaskReference(ref) + " is not a JSON object",
			Err:     err,
		}
	}

	payload, result := NewPayload(data)
	if !result.Valid {
		return ResolvedSecretConfig{}, &ResolutionError{
			Kind:        KindPayloadValidation,
			Source:      c.Kind,
			Origin:      c.Label(),
			Format:      FormatReference,
			Details:     "secret stored at " + MaskReference(ref) + " is invalid",
			FieldErrors: result.Errors,
			Warnings:    result.Warnings,
		}
	}

	return ResolvedSecretConfig{
		Format:       FormatReference,
		Reference:    &ref,
		Payload:      &payload,
		Provenance:   c.Kind,
		Origin:       c.Label(),
		Warnings:     result.Warnings,
		RawInputEcho: strings.TrimSpace(c.Raw),
	}, nil
}

// fetch performs the single bounded store call and classifies its failure.
func (r *Resolver) fetch(ctx context.Context, ref StoreReference) ([]byte, *ResolutionError) {
	masked := MaskReference(ref)

	if err := ctx.Err(); err != nil {
		return nil, fetchFailure(ctx, masked, err)
	}
	if r.store == nil {
		return nil, &ResolutionError{
			Kind: KindStoreFetch,
			Err: &StoreFetchError{
				Kind:      FetchUnavailable,
				Reference: masked,
				Err:       errors.New("no secret store client configured"),
			},
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	raw, err := r.store.Get(fetchCtx, ref)
	if err != nil {
		return nil, fetchFailure(ctx, masked, err)
	}
	return raw, nil
}

func fetchFailure(parent context.Context, maskedRef string, err error) *ResolutionError {
	kind, cancelled := classifyFetch(parent, err)
	if cancelled {
		return &ResolutionError{
			Kind:    KindCancelled,
			Details: "cancelled while fetching " + maskedRef,
			Err:     context.Canceled,
		}
	}

	fe := &StoreFetchError{Kind: kind, Reference: maskedRef, Err: err}
	if errors.Is(err, context.DeadlineExceeded) {
		fe.Err = errors.New("timed out waiting for the secret store")
	}
	return &ResolutionError{
		Kind:    KindStoreFetch,
		Details: fe.Error(),
		Err:     fe,
	}
}

// attribute stamps the committed candidate onto an error built without it.
func attribute(err *ResolutionError, c CandidateSource, format Format) *ResolutionError {
	err.Source = c.Kind
	err.Origin = c.Label()
	err.Format = format
	return err
}

func noSourceError(candidates []CandidateSource) *ResolutionError {
	options := make([]string, 0, len(Precedence))
	for _, kind := range Precedence {
		label := kind.Description()
		for _, c := range candidates {
			if c.Kind == kind && c.Origin != "" {
				label = c.Origin
				break
			}
		}
		options = append(options, label)
	}

	return &ResolutionError{
		Kind:    KindNoSourceConfigured,
		Details: "set one of: " + strings.Join(options, "; "),
	}
}
