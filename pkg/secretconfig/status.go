package secretconfig

import (
	"errors"
)

// Status source values reported on the health endpoint.
const (
	StatusSourceRemoteStore   = "remote_store"
	StatusSourceInlineConfig  = "inline_config"
	StatusSourceLegacyFields  = "legacy_fields"
	StatusSourceNotConfigured = "not_configured"
)

// StatusSummary is a value-free projection of a resolution for health reporting.
type StatusSummary struct {
	Healthy       bool     `json:"healthy"`
	SourceKind    string   `json:"sourceKind"`
	Provenance    string   `json:"provenance,omitempty"`
	FieldsPresent []string `json:"fieldsPresent"`
	ErrorKind     string   `json:"errorKind,omitempty"`
}

// EndpointStatus is the JSON body of the status endpoint.
type EndpointStatus struct {
	Status           string `json:"status"`
	Source           string `json:"source"`
	SecretsValid     bool   `json:"secrets_valid"`
	TenantConfigured bool   `json:"tenant_configured"`
}

// Project derives a StatusSummary from the outcome of Resolve. When resolution failed on
// an identified source, SourceKind still names that source.
func Project(cfg *ResolvedSecretConfig, err error) StatusSummary {
	if err != nil {
		summary := StatusSummary{
			SourceKind:    StatusSourceNotConfigured,
			FieldsPresent: []string{},
		}
		var re *ResolutionError
		if errors.As(err, &re) {
			summary.ErrorKind = re.Kind.String()
			if re.Source != SourceUnknown {
				summary.Provenance = re.Source.String()
				summary.SourceKind = statusSource(re.Source, re.Format)
			}
		}
		return summary
	}

	if cfg == nil {
		return StatusSummary{
			SourceKind:    StatusSourceNotConfigured,
			FieldsPresent: []string{},
		}
	}

	fields := []string{}
	if cfg.Reference != nil {
		fields = append(fields, "reference")
	}
	if cfg.Payload != nil {
		fields = append(fields, cfg.Payload.FieldsPresent()...)
	}

	return StatusSummary{
		Healthy:       true,
		SourceKind:    statusSource(cfg.Provenance, cfg.Format),
		Provenance:    cfg.Provenance.String(),
		FieldsPresent: fields,
	}
}

// Endpoint converts the summary to the status endpoint body.
func (s StatusSummary) Endpoint() EndpointStatus {
	status := "unhealthy"
	if s.Healthy {
		status = "healthy"
	}
	return EndpointStatus{
		Status:           status,
		Source:           s.SourceKind,
		SecretsValid:     s.Healthy,
		TenantConfigured: s.HasField(FieldTenant),
	}
}

// HasField reports whether name is among FieldsPresent.
func (s StatusSummary) HasField(name string) bool {
	for _, f := range s.FieldsPresent {
		if f == name {
			return true
		}
	}
	return false
}

func statusSource(kind SourceKind, format Format) string {
	switch {
	case kind == LegacyDiscreteFields:
		return StatusSourceLegacyFields
	case format == FormatReference:
		return StatusSourceRemoteStore
	case format == FormatInline:
		return StatusSourceInlineConfig
	default:
		return StatusSourceNotConfigured
	}
}
