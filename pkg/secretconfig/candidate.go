package secretconfig

import (
	"strings"
)

// SourceKind identifies where a candidate value came from.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	ExplicitOverride
	EnvironmentVariable
	ConfigFile
	LegacyDiscreteFields
	RemoteDiscovery
)

// Precedence is the fixed evaluation order, highest first.
var Precedence = []SourceKind{
	ExplicitOverride,
	EnvironmentVariable,
	ConfigFile,
	LegacyDiscreteFields,
	RemoteDiscovery,
}

// String returns the stable identifier of the kind.
func (k SourceKind) String() string {
	switch k {
	case ExplicitOverride:
		return "explicit_override"
	case EnvironmentVariable:
		return "environment_variable"
	case ConfigFile:
		return "config_file"
	case LegacyDiscreteFields:
		return "legacy_fields"
	case RemoteDiscovery:
		return "remote_discovery"
	default:
		return "unknown"
	}
}

// Description is the fallback label used when a candidate carries no Origin.
func (k SourceKind) Description() string {
	switch k {
	case ExplicitOverride:
		return "an explicit override value"
	case EnvironmentVariable:
		return "the unified secret configuration environment variable"
	case ConfigFile:
		return "the secret_config value of the config file"
	case LegacyDiscreteFields:
		return "the legacy TENANT, CLIENT_ID and CLIENT_SECRET variables"
	case RemoteDiscovery:
		return "a secret reference published for discovery"
	default:
		return "an unknown source"
	}
}

// LegacyFields carries the discrete credentials used before the unified value existed.
type LegacyFields struct {
	Tenant       string
	ClientID     string
	ClientSecret string
}

// CandidateSource is one entry of the precedence list.
type CandidateSource struct {
	Kind SourceKind

	// Raw is the reference or inline payload. Unused for LegacyDiscreteFields.
	Raw string

	// Legacy is only read for LegacyDiscreteFields.
	Legacy LegacyFields

	// Origin names the concrete input, e.g. "--secret-config flag".
	Origin string
}

// Override builds an ExplicitOverride candidate.
func Override(raw string) CandidateSource {
	return CandidateSource{Kind: ExplicitOverride, Raw: raw}
}

// FromEnv builds an EnvironmentVariable candidate for the named variable.
func FromEnv(name, raw string) CandidateSource {
	return CandidateSource{Kind: EnvironmentVariable, Raw: raw, Origin: name + " environment variable"}
}

// FromConfigFile builds a ConfigFile candidate for the file at path.
func FromConfigFile(path, raw string) CandidateSource {
	return CandidateSource{Kind: ConfigFile, Raw: raw, Origin: "secret_config in " + path}
}

// FromLegacyFields builds a LegacyDiscreteFields candidate.
func FromLegacyFields(tenant, clientID, clientSecret string) CandidateSource {
	return CandidateSource{
		Kind:   LegacyDiscreteFields,
		Legacy: LegacyFields{Tenant: tenant, ClientID: clientID, ClientSecret: clientSecret},
	}
}

// FromDiscovery builds a RemoteDiscovery candidate; origin names the discovery backend.
func FromDiscovery(origin, raw string) CandidateSource {
	return CandidateSource{Kind: RemoteDiscovery, Raw: raw, Origin: origin}
}

// WithOrigin returns a copy of c labelled with origin.
func (c CandidateSource) WithOrigin(origin string) CandidateSource {
	c.Origin = origin
	return c
}

// Present reports whether the candidate was supplied. A value that is empty after
// trimming counts as absent. Legacy fields are present when any one of them is set.
func (c CandidateSource) Present() bool {
	if c.Kind == LegacyDiscreteFields {
		return strings.TrimSpace(c.Legacy.Tenant) != "" ||
			strings.TrimSpace(c.Legacy.ClientID) != "" ||
			strings.TrimSpace(c.Legacy.ClientSecret) != ""
	}
	return strings.TrimSpace(c.Raw) != ""
}

// Label returns the Origin, or the kind's description when no origin was set.
func (c CandidateSource) Label() string {
	if c.Origin != "" {
		return c.Origin
	}
	return c.Kind.Description()
}

// String never includes the raw value.
func (c CandidateSource) String() string {
	return c.Kind.String() + " (" + c.Label() + ")"
}

// GoString implements fmt.GoStringer so %#v cannot print the raw value either.
func (c CandidateSource) GoString() string {
	return c.String()
}

// legacyData assembles the discrete fields into untyped payload data. Blank fields are
// left out so the payload validator reports them as missing.
func (l LegacyFields) legacyData() map[string]interface{} {
	data := make(map[string]interface{}, 3)
	if strings.TrimSpace(l.Tenant) != "" {
		data[FieldTenant] = l.Tenant
	}
	if strings.TrimSpace(l.ClientID) != "" {
		data[FieldClientID] = l.ClientID
	}
	if strings.TrimSpace(l.ClientSecret) != "" {
		data[FieldClientSecret] = l.ClientSecret
	}
	return data
}
