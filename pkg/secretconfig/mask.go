package secretconfig

import (
	"net/url"
	"regexp"
	"strings"
)

// MaskToken replaces the hidden part of a masked value.
const MaskToken = "****"

// suffixLength is how many trailing characters of a masked value may be shown.
const suffixLength = 4

// minRevealLength is the shortest value whose suffix is shown at all; shorter values are
// masked completely.
const minRevealLength = 2 * suffixLength

var digitRun = regexp.MustCompile(`[0-9]{5,}`)

// Mask renders a resolved configuration for display. The clientSecret and the account id
// are never shown beyond their last four characters.
func Mask(cfg ResolvedSecretConfig) string {
	var lines []string
	if cfg.Format == FormatReference && cfg.Reference != nil {
		lines = append(lines, "reference: "+MaskReference(*cfg.Reference))
	}
	if cfg.Payload != nil {
		lines = append(lines, MaskPayload(*cfg.Payload))
	}
	return strings.Join(lines, "\n")
}

// MaskReference reconstructs the reference with the owner segment masked.
func MaskReference(ref StoreReference) string {
	masked := ref
	masked.Owner = maskSuffix(ref.Owner)
	return masked.String()
}

// MaskRawReference masks a reference string that may not have been validated. Well-formed
// references get their owner segment masked; anything else has every long digit run
// masked.
func MaskRawReference(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if ref, result := ParseReference(trimmed); result.Valid {
		return MaskReference(ref)
	}
	parts := strings.SplitN(trimmed, ":", len(segmentNames))
	if len(parts) > 4 {
		parts[4] = maskSuffix(parts[4])
		trimmed = strings.Join(parts, ":")
	}
	return digitRun.ReplaceAllStringFunc(trimmed, maskSuffix)
}

// MaskPayload renders one "field: value" line per present field. Identifiers are shown in
// full unless they contain the clientSecret; the clientSecret is always masked.
func MaskPayload(p SecretPayload) string {
	ident := func(v string) string {
		if p.ClientSecret != "" && strings.Contains(v, p.ClientSecret) {
			return MaskToken
		}
		return v
	}

	lines := []string{
		FieldTenant + ": " + ident(p.Tenant),
		FieldClientID + ": " + ident(p.ClientID),
		FieldClientSecret + ": " + maskSuffix(p.ClientSecret),
	}
	if p.AppDefinitionID != "" {
		lines = append(lines, FieldAppDefinitionID+": "+ident(p.AppDefinitionID))
	}
	if p.APIURL != "" {
		lines = append(lines, FieldAPIURL+": "+ident(redactURL(p.APIURL)))
	}
	return strings.Join(lines, "\n")
}

// MaskValue masks an arbitrary sensitive value the same way as the clientSecret.
func MaskValue(s string) string {
	return maskSuffix(s)
}

// maskSuffix hides all but the last suffixLength characters of s.
func maskSuffix(s string) string {
	runes := []rune(s)
	if len(runes) <= minRevealLength {
		return MaskToken
	}
	return MaskToken + string(runes[len(runes)-suffixLength:])
}

// redactURL hides any password embedded in the URL's user info.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
