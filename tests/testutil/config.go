// Package testutil provides test utilities and helpers for secretcfg tests.
//
// This package contains shared test infrastructure including configuration builders,
// logger helpers and environment management.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/systmms/secretcfg/internal/config"
)

// TestConfigBuilder provides a fluent API for building secretcfg.yaml files.
//
// Example usage:
//
//	path := NewTestConfig(t).
//	    WithSecretConfig(`{"tenant":"acme","clientId":"id","clientSecret":"s"}`).
//	    WithSSMParameter("/app/secret-config").
//	    Write()
type TestConfigBuilder struct {
	config  *config.Definition
	tempDir string
	t       *testing.T
}

// NewTestConfig creates a new TestConfigBuilder starting from an empty version 1 file.
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		config:  &config.Definition{Version: 1},
		tempDir: t.TempDir(),
		t:       t,
	}
}

// WithSecretConfig sets the secret_config value.
func (b *TestConfigBuilder) WithSecretConfig(raw string) *TestConfigBuilder {
	b.config.SecretConfig = raw
	return b
}

// WithStore sets the store section.
func (b *TestConfigBuilder) WithStore(store config.StoreConfig) *TestConfigBuilder {
	b.config.Store = store
	return b
}

// WithSSMParameter enables SSM discovery for the named parameter.
func (b *TestConfigBuilder) WithSSMParameter(name string) *TestConfigBuilder {
	b.config.Discovery.SSMParameter = name
	return b
}

// WithKeyring enables keyring discovery.
func (b *TestConfigBuilder) WithKeyring(service, account string) *TestConfigBuilder {
	b.config.Discovery.KeyringService = service
	b.config.Discovery.KeyringAccount = account
	return b
}

// Build returns the in-memory definition.
func (b *TestConfigBuilder) Build() *config.Definition {
	return b.config
}

// Write writes the configuration to a temporary secretcfg.yaml and returns the path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	data, err := yaml.Marshal(b.config)
	if err != nil {
		b.t.Fatalf("Failed to marshal test config: %v", err)
	}
	path := filepath.Join(b.tempDir, config.DefaultPath)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		b.t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// WriteTestConfig writes raw YAML to a temporary secretcfg.yaml and returns the path.
func WriteTestConfig(t *testing.T, yamlContent string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), config.DefaultPath)
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

// WriteTestFile writes content to name inside a temporary directory and returns the path.
func WriteTestFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}
