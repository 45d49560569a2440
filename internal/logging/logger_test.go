package logging_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/systmms/secretcfg/internal/logging"
)

func TestSecretRedaction(t *testing.T) {
	t.Parallel()

	secret := logging.Secret("super-secret-value")
	assert.Equal(t, "[REDACTED]", secret.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", secret))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%#v", secret))
	assert.Equal(t, "super-secret-value", string(secret))
}

func TestLoggerOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, false, true)

	log.Info("resolved from %s", "environment")
	log.Warn("unknown field %q", "region")
	log.Error("failed")
	log.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "✓ resolved from environment\n")
	assert.Contains(t, out, "⚠ unknown field \"region\"\n")
	assert.Contains(t, out, "✗ failed\n")
	assert.NotContains(t, out, "hidden")
	assert.NotContains(t, out, "\033[")
}

func TestLoggerDebugMode(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, true, true)
	require.True(t, log.IsDebug())

	log.Debug("candidate %d", 3)
	assert.Equal(t, "[DEBUG] candidate 3\n", buf.String())
}

func TestLoggerColorOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, false, false)
	log.Info("ok")
	assert.Contains(t, buf.String(), "\033[32m✓\033[0m ok")
}

func TestSecretTypeInLogOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, false, true)
	log.Info("client secret is %s", logging.Secret("abcd-efgh-ijkl"))
	assert.NotContains(t, buf.String(), "abcd-efgh-ijkl")
	assert.Contains(t, buf.String(), "[REDACTED]")
}

func TestRedactFunction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		secrets  []string
		expected string
	}{
		{
			name:     "client secret in report",
			input:    `value starts with "clientSecret=s3cr3t-value"`,
			secrets:  []string{"s3cr3t-value"},
			expected: `value starts with "clientSecret=[REDACTED]"`,
		},
		{
			name:     "every occurrence",
			input:    "s3cr3t-value then s3cr3t-value",
			secrets:  []string{"s3cr3t-value"},
			expected: "[REDACTED] then [REDACTED]",
		},
		{
			name:     "surrounding whitespace in the secret",
			input:    "CLIENT_SECRET was s3cr3t-value",
			secrets:  []string{"s3cr3t-value\n"},
			expected: "CLIENT_SECRET was [REDACTED]",
		},
		{
			name:     "unset secret ignored",
			input:    "No source configured",
			secrets:  []string{""},
			expected: "No source configured",
		},
		{
			name:     "short secret ignored",
			input:    "region: eu-west-1",
			secrets:  []string{"eu"},
			expected: "region: eu-west-1",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, logging.Redact(tt.input, tt.secrets))
		})
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    zapcore.Level
		wantErr bool
	}{
		{"", zapcore.InfoLevel, false},
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"verbose", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := logging.ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewService(t *testing.T) {
	t.Parallel()

	log, err := logging.NewService("warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	_, err = logging.NewService("loud")
	assert.Error(t, err)
}
