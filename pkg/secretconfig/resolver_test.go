package secretconfig_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

const (
	inlineAcme  = `{"tenant":"acme","clientId":"abc123","clientSecret":"shh-secret-999"}`
	inlineOther = `{"tenant":"other","clientId":"zzz","clientSecret":"another-secret-42"}`
	storedValue = `{"tenant":"stored","clientId":"from-store","clientSecret":"stored-secret-7777"}`
)

// countingStore is an in-memory StoreClient that records how often it is called.
type countingStore struct {
	calls   int32
	secrets map[string]string
	errs    map[string]error
	delay   time.Duration
}

func (s *countingStore) Get(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := s.errs[ref.String()]; ok {
		return nil, err
	}
	if v, ok := s.secrets[ref.String()]; ok {
		return []byte(v), nil
	}
	return nil, &secretconfig.NotFoundError{Key: ref.ResourceName}
}

func (s *countingStore) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func newStore() *countingStore {
	return &countingStore{
		secrets: map[string]string{validARN: storedValue},
		errs:    map[string]error{},
	}
}

func requireKind(t *testing.T, err error, kind secretconfig.ErrorKind) *secretconfig.ResolutionError {
	t.Helper()
	require.Error(t, err)
	var re *secretconfig.ResolutionError
	require.True(t, errors.As(err, &re), "expected *ResolutionError, got %T", err)
	require.Equal(t, kind, re.Kind, re.Error())
	return re
}

func TestResolveInline(t *testing.T) {
	t.Parallel()

	store := newStore()
	cfg, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.FromEnv("SECRET_CONFIG", inlineAcme),
	}, store)
	require.NoError(t, err)

	assert.Equal(t, secretconfig.FormatInline, cfg.Format)
	assert.Nil(t, cfg.Reference)
	require.NotNil(t, cfg.Payload)
	assert.Equal(t, "acme", cfg.Payload.Tenant)
	assert.Equal(t, secretconfig.EnvironmentVariable, cfg.Provenance)
	assert.Equal(t, "SECRET_CONFIG environment variable", cfg.Origin)
	assert.Equal(t, 0, store.Calls(), "inline payloads never touch the store")
}

// TestResolvePrecedence verifies the highest-precedence present source wins without merging
func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	candidates := []secretconfig.CandidateSource{
		secretconfig.FromLegacyFields("legacy", "legacy-id", "legacy-secret"),
		secretconfig.FromEnv("SECRET_CONFIG", inlineOther),
		secretconfig.Override(inlineAcme),
	}

	for i := 0; i < 3; i++ {
		cfg, err := secretconfig.Resolve(context.Background(), candidates, nil)
		require.NoError(t, err)
		assert.Equal(t, secretconfig.ExplicitOverride, cfg.Provenance)
		assert.Equal(t, secretconfig.SecretPayload{
			Tenant: "acme", ClientID: "abc123", ClientSecret: "shh-secret-999",
		}, *cfg.Payload)
	}
}

// TestResolveNoSilentFallback verifies an invalid override is terminal
func TestResolveNoSilentFallback(t *testing.T) {
	t.Parallel()

	store := newStore()
	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override(`{"tenant":"acme"}`),
		secretconfig.FromEnv("SECRET_CONFIG", inlineOther),
		secretconfig.FromDiscovery("ssm parameter /app/secret", validARN),
	}, store)

	re := requireKind(t, err, secretconfig.KindPayloadValidation)
	assert.Equal(t, secretconfig.ExplicitOverride, re.Source)
	assert.Contains(t, err.Error(), secretconfig.ExplicitOverride.Description())
	assert.Equal(t, 0, store.Calls())
}

// TestResolveEmptyOverrideIsAbsent verifies a blank override does not count as present
func TestResolveEmptyOverrideIsAbsent(t *testing.T) {
	t.Parallel()

	cfg, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override("   \n"),
		secretconfig.FromConfigFile("secretcfg.yaml", inlineOther),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, secretconfig.ConfigFile, cfg.Provenance)
	assert.Equal(t, "other", cfg.Payload.Tenant)
}

func TestResolveLegacyFields(t *testing.T) {
	t.Parallel()

	t.Run("complete", func(t *testing.T) {
		t.Parallel()

		cfg, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
			secretconfig.FromLegacyFields("acme", "abc123", "shh-secret-999"),
			secretconfig.FromDiscovery("keyring", validARN),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, secretconfig.LegacyDiscreteFields, cfg.Provenance)
		assert.Equal(t, secretconfig.FormatInline, cfg.Format)
		assert.Empty(t, cfg.RawInputEcho)
	})

	t.Run("partial", func(t *testing.T) {
		t.Parallel()

		_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
			secretconfig.FromLegacyFields("acme", "", "   "),
		}, nil)
		re := requireKind(t, err, secretconfig.KindPayloadValidation)
		assert.Equal(t, []string{"clientId", "clientSecret"}, fieldNames(re.FieldErrors))
	})

	t.Run("invalid_tenant", func(t *testing.T) {
		t.Parallel()

		_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
			secretconfig.FromLegacyFields("acme corp", "id", "secret"),
		}, nil)
		requireKind(t, err, secretconfig.KindPayloadValidation)
	})
}

func TestResolveReference(t *testing.T) {
	t.Parallel()

	store := newStore()
	cfg, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.FromConfigFile("secretcfg.yaml", validARN),
	}, store)
	require.NoError(t, err)

	assert.Equal(t, 1, store.Calls())
	assert.Equal(t, secretconfig.FormatReference, cfg.Format)
	require.NotNil(t, cfg.Reference)
	assert.Equal(t, "123456789012", cfg.Reference.Owner)
	require.NotNil(t, cfg.Payload)
	assert.Equal(t, "from-store", cfg.Payload.ClientID)
	assert.Equal(t, secretconfig.ConfigFile, cfg.Provenance)
}

// TestResolveMalformedReference verifies no network call happens for a bad reference
func TestResolveMalformedReference(t *testing.T) {
	t.Parallel()

	store := newStore()
	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override("arn:wrong-service:secretsmanager:us-east-1"),
	}, store)

	re := requireKind(t, err, secretconfig.KindInvalidReference)
	assert.True(t, errors.Is(err, secretconfig.ErrInvalidReference))
	require.Len(t, re.FieldErrors, 1)
	assert.Contains(t, re.FieldErrors[0].Message, "account-id")
	assert.Contains(t, re.FieldErrors[0].Message, "secret-name")
	assert.Equal(t, 0, store.Calls())
}

// TestResolveFetchFailures verifies store failures are classified distinctly
func TestResolveFetchFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		want    secretconfig.FetchKind
		hintHas string
	}{
		{
			name:    "not_found",
			err:     &secretconfig.NotFoundError{Key: "prod/app"},
			want:    secretconfig.FetchNotFound,
			hintHas: "Check the reference",
		},
		{
			name:    "access_denied",
			err:     &secretconfig.AccessDeniedError{Key: "prod/app", Message: "not authorized"},
			want:    secretconfig.FetchAccessDenied,
			hintHas: "access policy",
		},
		{
			name:    "wrapped_access_denied",
			err:     fmt.Errorf("adapter: %w", &secretconfig.AccessDeniedError{Key: "prod/app"}),
			want:    secretconfig.FetchAccessDenied,
			hintHas: "access policy",
		},
		{
			name:    "other",
			err:     errors.New("connection reset by peer"),
			want:    secretconfig.FetchUnavailable,
			hintHas: "Retry later",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newStore()
			store.errs[validARN] = tt.err

			_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
				secretconfig.Override(validARN),
			}, store)

			re := requireKind(t, err, secretconfig.KindStoreFetch)
			assert.True(t, errors.Is(err, secretconfig.ErrStoreFetch))
			assert.Equal(t, secretconfig.ExplicitOverride, re.Source)

			var fe *secretconfig.StoreFetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.want, fe.Kind)
			assert.Contains(t, re.Suggestion(), tt.hintHas)
			assert.NotContains(t, err.Error(), "123456789012", "owner is masked in errors")
			assert.Equal(t, 1, store.Calls())
		})
	}
}

func TestResolveFetchTimeout(t *testing.T) {
	t.Parallel()

	store := newStore()
	store.delay = time.Second

	resolver := secretconfig.NewResolver(store, secretconfig.WithFetchTimeout(20*time.Millisecond))
	_, err := resolver.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override(validARN),
	})

	requireKind(t, err, secretconfig.KindStoreFetch)
	var fe *secretconfig.StoreFetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, secretconfig.FetchUnavailable, fe.Kind)
	assert.Contains(t, fe.Error(), "timed out")
}

// TestResolveCancelled verifies caller cancellation is distinct from store failures
func TestResolveCancelled(t *testing.T) {
	t.Parallel()

	store := newStore()
	store.delay = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := secretconfig.NewResolver(store).Resolve(ctx, []secretconfig.CandidateSource{
		secretconfig.FromEnv("SECRET_CONFIG", validARN),
	})

	re := requireKind(t, err, secretconfig.KindCancelled)
	assert.True(t, errors.Is(err, secretconfig.ErrCancelled))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, secretconfig.EnvironmentVariable, re.Source)
	assert.False(t, errors.Is(err, secretconfig.ErrStoreFetch))
}

func TestResolveAlreadyCancelledSkipsStore(t *testing.T) {
	t.Parallel()

	store := newStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := secretconfig.Resolve(ctx, []secretconfig.CandidateSource{secretconfig.Override(validARN)}, store)
	requireKind(t, err, secretconfig.KindCancelled)
	assert.Equal(t, 0, store.Calls())
}

func TestResolveNilStore(t *testing.T) {
	t.Parallel()

	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override(validARN),
	}, nil)

	var fe *secretconfig.StoreFetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, secretconfig.FetchUnavailable, fe.Kind)
}

func TestResolveInvalidStoredPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stored string
		kind   secretconfig.ErrorKind
	}{
		{name: "not_json", stored: "plain-password", kind: secretconfig.KindMalformedInline},
		{name: "missing_fields", stored: `{"tenant":"acme"}`, kind: secretconfig.KindPayloadValidation},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newStore()
			store.secrets[validARN] = tt.stored

			_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
				secretconfig.Override(validARN),
			}, store)
			re := requireKind(t, err, tt.kind)
			assert.Equal(t, secretconfig.FormatReference, re.Format)
			assert.NotContains(t, err.Error(), "plain-password")
		})
	}
}

func TestResolveMalformedInline(t *testing.T) {
	t.Parallel()

	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.FromConfigFile("secretcfg.yaml", `{"tenant": "acme",`),
	}, nil)

	re := requireKind(t, err, secretconfig.KindMalformedInline)
	assert.Equal(t, secretconfig.ConfigFile, re.Source)
	assert.True(t, errors.Is(err, secretconfig.ErrMalformedInline))
}

func TestResolveUnrecognized(t *testing.T) {
	t.Parallel()

	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.FromEnv("SECRET_CONFIG", "hunter2"),
		secretconfig.FromConfigFile("secretcfg.yaml", inlineAcme),
	}, nil)

	re := requireKind(t, err, secretconfig.KindUnrecognizedFormat)
	assert.Equal(t, secretconfig.EnvironmentVariable, re.Source)
	assert.Equal(t, "SECRET_CONFIG environment variable", re.Origin)
}

// TestResolveNoSource verifies the error enumerates every configuration option
func TestResolveNoSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		candidates []secretconfig.CandidateSource
	}{
		{name: "nil", candidates: nil},
		{
			name: "all_blank",
			candidates: []secretconfig.CandidateSource{
				secretconfig.Override("").WithOrigin("--secret-config flag"),
				secretconfig.FromEnv("SECRET_CONFIG", " "),
				secretconfig.FromConfigFile("secretcfg.yaml", ""),
				secretconfig.FromLegacyFields("", "", ""),
				secretconfig.FromDiscovery("ssm parameter /app/secret", ""),
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := secretconfig.Resolve(context.Background(), tt.candidates, nil)
			re := requireKind(t, err, secretconfig.KindNoSourceConfigured)
			assert.Equal(t, secretconfig.SourceUnknown, re.Source)

			options := 0
			for _, kind := range secretconfig.Precedence {
				label := kind.Description()
				for _, c := range tt.candidates {
					if c.Kind == kind && c.Origin != "" {
						label = c.Origin
					}
				}
				if assert.Contains(t, err.Error(), label) {
					options++
				}
			}
			assert.GreaterOrEqual(t, options, 3)
		})
	}
}

// TestResolveDeterministic verifies two resolutions of the same input are identical
func TestResolveDeterministic(t *testing.T) {
	t.Parallel()

	store := newStore()
	candidates := []secretconfig.CandidateSource{
		secretconfig.FromEnv("SECRET_CONFIG", validARN),
		secretconfig.FromLegacyFields("a", "b", "c"),
	}

	first, err := secretconfig.Resolve(context.Background(), candidates, store)
	require.NoError(t, err)
	second, err := secretconfig.Resolve(context.Background(), candidates, store)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, store.Calls(), "one store call per resolution")
}

func TestSelect(t *testing.T) {
	t.Parallel()

	first := secretconfig.FromDiscovery("keyring", validARN)
	second := secretconfig.FromDiscovery("ssm", inlineAcme)

	selected, ok := secretconfig.Select([]secretconfig.CandidateSource{first, second})
	require.True(t, ok)
	assert.Equal(t, "keyring", selected.Origin, "caller order wins within a kind")

	_, ok = secretconfig.Select(nil)
	assert.False(t, ok)
}

func TestCandidateSourceStringHidesRaw(t *testing.T) {
	t.Parallel()

	c := secretconfig.FromEnv("SECRET_CONFIG", inlineAcme)
	assert.NotContains(t, fmt.Sprintf("%v", c), "shh-secret-999")
	assert.NotContains(t, fmt.Sprintf("%#v", c), "shh-secret-999")
}

func fieldNames(errs []secretconfig.FieldError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}
