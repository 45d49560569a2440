package testutil

import (
	"os"
	"testing"
)

// SecretEnvVars are the variables read during candidate gathering.
var SecretEnvVars = []string{"SECRET_CONFIG", "TENANT", "CLIENT_ID", "CLIENT_SECRET"}

// SetupTestEnv sets environment variables for the duration of a test.
//
// The original environment is restored automatically when the test completes.
// This uses t.Cleanup() to ensure cleanup happens even if the test fails.
//
// Example usage:
//
//	SetupTestEnv(t, map[string]string{
//	    "SECRET_CONFIG": `{"tenant":"acme","clientId":"id","clientSecret":"s"}`,
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	for key, value := range vars {
		remember(t, key)
		if err := os.Setenv(key, value); err != nil {
			t.Fatalf("Failed to set environment variable %s: %v", key, err)
		}
	}
}

// ClearTestEnv unsets the named variables (SecretEnvVars when none are given)
// and restores them when the test completes.
func ClearTestEnv(t *testing.T, names ...string) {
	t.Helper()

	if len(names) == 0 {
		names = SecretEnvVars
	}
	for _, key := range names {
		remember(t, key)
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
	}
}

func remember(t *testing.T, key string) {
	t.Helper()

	orig, wasSet := os.LookupEnv(key)
	t.Cleanup(func() {
		if wasSet {
			if err := os.Setenv(key, orig); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
			return
		}
		if err := os.Unsetenv(key); err != nil {
			t.Errorf("Failed to unset environment variable %s: %v", key, err)
		}
	})
}
