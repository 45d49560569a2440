package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	dserrors "github.com/systmms/secretcfg/internal/errors"
	"github.com/systmms/secretcfg/internal/logging"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "secretcfg.yaml"

// DefaultKeyringAccount is used when discovery names a keyring service without an account.
const DefaultKeyringAccount = "secret_config"

//go:embed schema.json
var schemaJSON []byte

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition

	// Found reports whether Path existed when Load ran.
	Found bool
}

// Definition represents the secretcfg.yaml structure
type Definition struct {
	Version      int             `yaml:"version"`
	SecretConfig string          `yaml:"secret_config,omitempty"`
	Store        StoreConfig     `yaml:"store,omitempty"`
	Discovery    DiscoveryConfig `yaml:"discovery,omitempty"`
	Server       ServerConfig    `yaml:"server,omitempty"`
}

// StoreConfig configures the remote secret store client.
type StoreConfig struct {
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	TimeoutMs       int    `yaml:"timeout_ms,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Timeout returns the per-fetch timeout, or zero to use the resolver default.
func (s StoreConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// DiscoveryConfig names where a reference may be discovered when nothing else is set.
type DiscoveryConfig struct {
	SSMParameter   string `yaml:"ssm_parameter,omitempty"`
	KeyringService string `yaml:"keyring_service,omitempty"`
	KeyringAccount string `yaml:"keyring_account,omitempty"`
}

// Enabled reports whether any discoverer is configured.
func (d DiscoveryConfig) Enabled() bool {
	return d.SSMParameter != "" || d.KeyringService != ""
}

// Account returns the keyring account, falling back to DefaultKeyringAccount.
func (d DiscoveryConfig) Account() string {
	if d.KeyringAccount == "" {
		return DefaultKeyringAccount
	}
	return d.KeyringAccount
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr     string `yaml:"addr,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// Load reads, schema-checks and parses the configuration file.
// A missing file yields an empty definition.
func (c *Config) Load() error {
	if c.Path == "" {
		c.Path = DefaultPath
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Found = false
			c.Definition = &Definition{Version: 1}
			return nil
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}
	c.Found = true

	def, err := Parse(data)
	if err != nil {
		return err
	}
	c.Definition = def
	return nil
}

// Parse validates raw YAML against the embedded schema and decodes it.
func Parse(data []byte) (*Definition, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if doc == nil {
		return &Definition{Version: 1}, nil
	}

	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "configuration file does not match the expected structure",
			Suggestion: "Compare your file against the documented secretcfg.yaml layout",
		}
	}
	if def.Version == 0 {
		def.Version = 1
	}
	return &def, nil
}

func validateSchema(doc interface{}) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return dserrors.ConfigError{
			Message:    "configuration file uses non-string mapping keys",
			Suggestion: "Use plain string keys throughout secretcfg.yaml",
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewBytesLoader(jsonData),
	)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	var problems []string
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return dserrors.ConfigError{
		Field:      result.Errors()[0].Field(),
		Message:    "configuration file failed validation: " + strings.Join(problems, "; "),
		Suggestion: "Remove unknown keys and check value types in secretcfg.yaml",
	}
}
