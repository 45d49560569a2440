package secretconfig

import (
	"encoding/json"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Payload field names as they appear on the wire.
const (
	FieldTenant          = "tenant"
	FieldClientID        = "clientId"
	FieldClientSecret    = "clientSecret"
	FieldAppDefinitionID = "appDefinitionId"
	FieldAPIURL          = "apiUrl"
)

var (
	requiredFields = []string{FieldTenant, FieldClientID, FieldClientSecret}
	optionalFields = []string{FieldAppDefinitionID, FieldAPIURL}
	tenantPattern  = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

// SecretPayload is the canonical credential set.
//
// Values of this type only come out of the payload validator, so every required field is
// non-empty and every optional field that is set is well-formed.
type SecretPayload struct {
	Tenant          string `json:"tenant"`
	ClientID        string `json:"clientId"`
	ClientSecret    string `json:"clientSecret"`
	AppDefinitionID string `json:"appDefinitionId,omitempty"`
	APIURL          string `json:"apiUrl,omitempty"`
}

// String renders the payload masked so it is safe to pass to loggers and fmt verbs.
func (p SecretPayload) String() string {
	return MaskPayload(p)
}

// GoString implements fmt.GoStringer for %#v.
func (p SecretPayload) GoString() string {
	return MaskPayload(p)
}

// FieldsPresent lists the names of the fields that carry a value, in wire order.
func (p SecretPayload) FieldsPresent() []string {
	fields := []string{FieldTenant, FieldClientID, FieldClientSecret}
	if p.AppDefinitionID != "" {
		fields = append(fields, FieldAppDefinitionID)
	}
	if p.APIURL != "" {
		fields = append(fields, FieldAPIURL)
	}
	return fields
}

// ParseInline decodes an inline payload literal into untyped data for ValidatePayload.
func ParseInline(raw string) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidatePayload checks untyped payload data against the payload rules and reports every
// violation at once. Unknown fields produce warnings, never errors.
func ValidatePayload(data interface{}) ValidationResult {
	_, result := validatePayload(data)
	return result
}

// NewPayload validates data and, when valid, returns the typed payload. The payload is the
// zero value whenever the result is invalid.
func NewPayload(data interface{}) (SecretPayload, ValidationResult) {
	return validatePayload(data)
}

func validatePayload(data interface{}) (SecretPayload, ValidationResult) {
	var b validationBuilder

	fields, ok := data.(map[string]interface{})
	if !ok {
		b.fail("", "payload must be a JSON object, got "+describeType(data),
			`Use the shape {"tenant": "...", "clientId": "...", "clientSecret": "..."}`)
		return SecretPayload{}, b.result()
	}

	values := make(map[string]string, len(fields))

	for _, name := range requiredFields {
		raw, present := fields[name]
		if !present {
			b.fail(name, "missing required field", "Add \""+name+"\" to the payload")
			continue
		}
		s, isString := raw.(string)
		if !isString {
			b.fail(name, "must be a string", "Quote the value of \""+name+"\"")
			continue
		}
		if strings.TrimSpace(s) == "" {
			b.fail(name, "cannot be empty", "Provide a non-blank value for \""+name+"\"")
			continue
		}
		values[name] = s
	}

	for _, name := range optionalFields {
		raw, present := fields[name]
		if !present {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			b.fail(name, "must be a string", "Quote the value of \""+name+"\" or remove it")
			continue
		}
		values[name] = s
	}

	if tenant, ok := values[FieldTenant]; ok && !tenantPattern.MatchString(tenant) {
		b.fail(FieldTenant, "may only contain letters, digits and hyphens",
			"Use the tenant slug, e.g. \"acme-corp\"")
		delete(values, FieldTenant)
	}

	if apiURL, ok := values[FieldAPIURL]; ok {
		if err := checkURL(apiURL); err != "" {
			b.fail(FieldAPIURL, err, "Use an absolute URL such as https://api.example.com")
			delete(values, FieldAPIURL)
		}
	}

	for _, name := range unknownFields(fields) {
		b.warn("unknown field %q is ignored", name)
	}

	result := b.result()
	if !result.Valid {
		return SecretPayload{}, result
	}

	return SecretPayload{
		Tenant:          values[FieldTenant],
		ClientID:        values[FieldClientID],
		ClientSecret:    values[FieldClientSecret],
		AppDefinitionID: values[FieldAppDefinitionID],
		APIURL:          values[FieldAPIURL],
	}, result
}

// checkURL returns a non-empty message when s is not an absolute http(s) URL.
func checkURL(s string) string {
	u, err := url.Parse(s)
	if err != nil {
		return "must be a well-formed URL"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "must be an absolute http or https URL"
	}
	if u.Host == "" {
		return "must include a host"
	}
	return ""
}

// unknownFields returns the keys outside the known field set, sorted for stable output.
func unknownFields(fields map[string]interface{}) []string {
	known := make(map[string]bool, len(requiredFields)+len(optionalFields))
	for _, name := range requiredFields {
		known[name] = true
	}
	for _, name := range optionalFields {
		known[name] = true
	}

	var unknown []string
	for name := range fields {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

func describeType(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case []interface{}:
		return "an array"
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return "an unsupported value"
	}
}
