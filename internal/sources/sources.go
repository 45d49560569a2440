// Package sources gathers the candidate secret configuration values visible to the
// process and hands them to the resolver in precedence order.
package sources

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/systmms/secretcfg/internal/config"
	"github.com/systmms/secretcfg/internal/discovery"
	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// Environment variable names read during gathering.
const (
	EnvSecretConfig = "SECRET_CONFIG"
	EnvTenant       = "TENANT"
	EnvClientID     = "CLIENT_ID"
	EnvClientSecret = "CLIENT_SECRET"
)

// OverrideFlag is the name of the command-line override flag.
const OverrideFlag = "secret-config"

// Options describes where to look for candidates.
type Options struct {
	// Override is the raw --secret-config value. "@path" reads the value from a file.
	Override string

	// Config is the loaded configuration file; nil means no file.
	Config *config.Config

	// Discoverers are consulted only when no higher-precedence candidate is present.
	Discoverers []discovery.Discoverer

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
}

// Gather returns one candidate per source kind, in precedence order. Absent sources are
// included as empty candidates so the resolver can name them when nothing is configured.
func Gather(ctx context.Context, opts Options) ([]secretconfig.CandidateSource, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	override, err := expand(opts.Override, "--"+OverrideFlag+" flag")
	if err != nil {
		return nil, err
	}
	envValue, err := expand(getenv(EnvSecretConfig), EnvSecretConfig+" environment variable")
	if err != nil {
		return nil, err
	}

	configPath := config.DefaultPath
	var fileValue string
	if opts.Config != nil {
		configPath = opts.Config.Path
		if opts.Config.Definition != nil {
			fileValue = opts.Config.Definition.SecretConfig
		}
	}

	candidates := []secretconfig.CandidateSource{
		secretconfig.Override(override).WithOrigin("--" + OverrideFlag + " flag"),
		secretconfig.FromEnv(EnvSecretConfig, envValue),
		secretconfig.FromConfigFile(configPath, fileValue),
		secretconfig.FromLegacyFields(getenv(EnvTenant), getenv(EnvClientID), getenv(EnvClientSecret)).
			WithOrigin(EnvTenant + "/" + EnvClientID + "/" + EnvClientSecret + " environment variables"),
	}

	remote, err := discover(ctx, candidates, opts.Discoverers)
	if err != nil {
		return nil, err
	}
	return append(candidates, remote), nil
}

func discover(ctx context.Context, higher []secretconfig.CandidateSource, discoverers []discovery.Discoverer) (secretconfig.CandidateSource, error) {
	absent := secretconfig.FromDiscovery(discoveryLabel(discoverers), "")
	if len(discoverers) == 0 {
		return absent, nil
	}
	for _, c := range higher {
		if c.Present() {
			return absent, nil
		}
	}

	res, found, err := discovery.First(ctx, discoverers...)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return absent, &secretconfig.ResolutionError{
				Kind:   secretconfig.KindCancelled,
				Source: secretconfig.RemoteDiscovery,
				Err:    context.Canceled,
			}
		}
		origin := absent.Origin
		var lookupErr *discovery.LookupError
		if errors.As(err, &lookupErr) {
			origin = lookupErr.Origin
		}
		return absent, &secretconfig.ResolutionError{
			Kind:    secretconfig.KindStoreFetch,
			Source:  secretconfig.RemoteDiscovery,
			Origin:  origin,
			Details: "remote discovery lookup failed",
			Err:     err,
		}
	}
	if !found {
		return absent, nil
	}
	return secretconfig.FromDiscovery(res.Origin, res.Value), nil
}

func discoveryLabel(discoverers []discovery.Discoverer) string {
	if len(discoverers) == 0 {
		return ""
	}
	names := make([]string, 0, len(discoverers))
	for _, d := range discoverers {
		names = append(names, d.Name())
	}
	return strings.Join(names, " or ")
}

// expand resolves "@path" indirection. Other values are returned unchanged.
func expand(value, origin string) (string, error) {
	if !strings.HasPrefix(value, "@") {
		return value, nil
	}
	path := strings.TrimPrefix(value, "@")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", dserrors.UserError{
			Message:    "Failed to read " + origin + " from file",
			Details:    err.Error(),
			Suggestion: "Check that " + path + " exists and is readable, or pass the value directly",
			Err:        err,
		}
	}
	return strings.TrimSpace(string(data)), nil
}
