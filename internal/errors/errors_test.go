package errors_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// TestUserErrorFormatting verifies UserError displays properly
func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Connection timeout")
	assert.Contains(t, errMsg, "Check network connectivity")
	assert.Contains(t, errMsg, "💡")
}

// TestConfigErrorFormatting verifies ConfigError displays with context
func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "store.region",
		Value:      "mars-1",
		Message:    "Invalid region",
		Suggestion: "Use a region such as us-east-1",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "store.region")
	assert.Contains(t, errMsg, "mars-1")
	assert.Contains(t, errMsg, "Invalid region")
	assert.Contains(t, errMsg, "us-east-1")
}

// TestReportPayloadValidation verifies every field error gets its own bullet
func TestReportPayloadValidation(t *testing.T) {
	t.Parallel()

	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override(`{"tenant":"acme corp","extra":1}`).WithOrigin("--secret-config flag"),
	}, nil)

	report := errors.Report(err)
	lines := strings.Split(report, "\n")

	assert.Equal(t, "Payload validation in --secret-config flag", lines[0])
	assert.Contains(t, report, "• tenant: may only contain letters, digits and hyphens")
	assert.Contains(t, report, "• clientId: missing required field")
	assert.Contains(t, report, "• clientSecret: missing required field")
	assert.Contains(t, report, "⚠ unknown field \"extra\" is ignored")
	assert.Contains(t, report, "💡 Try:")
}

// TestReportNoSource verifies the report lists every option on its own line
func TestReportNoSource(t *testing.T) {
	t.Parallel()

	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.Override("").WithOrigin("--secret-config flag"),
		secretconfig.FromEnv("SECRET_CONFIG", ""),
	}, nil)

	report := errors.Report(err)
	assert.Contains(t, report, "    - --secret-config flag")
	assert.Contains(t, report, "    - SECRET_CONFIG environment variable")
	assert.Contains(t, report, "    - "+secretconfig.LegacyDiscreteFields.Description())
	assert.Equal(t, 1, errors.ExitCode(err))
}

func TestReportStoreFetch(t *testing.T) {
	t.Parallel()

	store := secretconfig.StoreClientFunc(func(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
		return nil, &secretconfig.AccessDeniedError{Key: ref.ResourceName}
	})
	_, err := secretconfig.Resolve(context.Background(), []secretconfig.CandidateSource{
		secretconfig.FromEnv("SECRET_CONFIG", "arn:aws:secretsmanager:us-east-1:123456789012:secret:app"),
	}, store)

	report := errors.Report(err)
	assert.Contains(t, report, "Store fetch in SECRET_CONFIG environment variable")
	assert.Contains(t, report, "access policy")
	assert.NotContains(t, report, "123456789012")
	assert.Equal(t, "store_fetch", errors.Kind(err))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := secretconfig.StoreClientFunc(func(ctx context.Context, ref secretconfig.StoreReference) ([]byte, error) {
		return nil, ctx.Err()
	})
	_, err := secretconfig.Resolve(ctx, []secretconfig.CandidateSource{
		secretconfig.Override("arn:aws:secretsmanager:us-east-1:123456789012:secret:app"),
	}, store)

	assert.Equal(t, errors.ExitCancelled, errors.ExitCode(err))
	assert.Equal(t, 0, errors.ExitCode(nil))
	assert.Equal(t, 1, errors.ExitCode(fmt.Errorf("boom")))
	assert.Equal(t, "internal", errors.Kind(fmt.Errorf("boom")))
}

// TestSimplifyError verifies technical errors become user-friendly
func TestSimplifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{name: "yaml", err: fmt.Errorf("load: %w", fmt.Errorf("yaml: line 3: mapping values are not allowed")), contains: "Invalid YAML"},
		{name: "permission", err: fmt.Errorf("open secretcfg.yaml: permission denied"), contains: "Permission denied"},
		{name: "missing_file", err: fmt.Errorf("open x: no such file or directory"), contains: "File or directory not found"},
		{name: "passthrough", err: fmt.Errorf("something else"), contains: "something else"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, errors.Report(tt.err), tt.contains)
		})
	}

	assert.Nil(t, errors.SimplifyError(nil))
	assert.Empty(t, errors.Report(nil))
}
