package secretconfig

import (
	"regexp"
	"strings"
)

// StoreService is the service segment every reference must carry.
const StoreService = "secretsmanager"

// referenceResourceType is the fixed resource-type segment preceding the secret name.
const referenceResourceType = "secret"

// ReferenceShape is the expected reference layout, used in error messages.
const ReferenceShape = "arn:aws:secretsmanager:<region>:<account-id>:secret:<secret-name>"

var (
	ownerPattern     = regexp.MustCompile(`^[0-9]{12}$`)
	partitionPattern = regexp.MustCompile(`^aws(-[a-z]+)*$`)
	segmentNames     = []string{"arn", "partition", "service", "region", "account-id", "resource-type", "secret-name"}
)

// StoreReference points at a secret held in the remote store.
//
// A StoreReference returned by ParseReference has passed ValidateReference; its segments
// are not checked again downstream.
type StoreReference struct {
	// Provider is the ARN partition, e.g. "aws".
	Provider string `json:"provider"`
	// Location is the region holding the secret.
	Location string `json:"location"`
	// Owner is the 12-digit account id.
	Owner string `json:"owner"`
	// ResourceName is the secret name (possibly with the store's random suffix).
	ResourceName string `json:"resourceName"`
}

// String reconstructs the reference in its wire format.
func (r StoreReference) String() string {
	return strings.Join([]string{
		"arn", r.Provider, StoreService, r.Location, r.Owner, referenceResourceType, r.ResourceName,
	}, ":")
}

// ValidateReference checks the lexical shape of a reference. It never performs network
// access. A structural mismatch yields a single error; otherwise every segment violation
// is reported.
func ValidateReference(raw string) ValidationResult {
	_, result := parseReference(raw)
	return result
}

// ParseReference validates raw and returns the parsed reference together with the
// validation result. The reference is the zero value unless the result is valid.
func ParseReference(raw string) (StoreReference, ValidationResult) {
	return parseReference(raw)
}

func parseReference(raw string) (StoreReference, ValidationResult) {
	var b validationBuilder
	trimmed := strings.TrimSpace(raw)
	parts := strings.SplitN(trimmed, ":", len(segmentNames))

	if len(parts) < len(segmentNames) {
		missing := segmentNames[len(parts):]
		b.fail("reference",
			"reference must have the shape "+ReferenceShape+"; missing "+strings.Join(missing, ", "),
			"Copy the full ARN from the Secrets Manager console or 'aws secretsmanager describe-secret'")
		return StoreReference{}, b.result()
	}

	if parts[0] != "arn" || !partitionPattern.MatchString(parts[1]) || parts[2] != StoreService {
		b.fail("reference",
			"reference must start with arn:<partition>:"+StoreService+": (expected "+ReferenceShape+")",
			"Only AWS Secrets Manager secret ARNs are supported")
		return StoreReference{}, b.result()
	}

	ref := StoreReference{
		Provider:     parts[1],
		Location:     parts[3],
		Owner:        parts[4],
		ResourceName: parts[6],
	}

	switch {
	case ref.Location == "":
		b.fail("region", "cannot be empty", "Use the region the secret lives in, e.g. us-east-1")
	case strings.ContainsAny(ref.Location, " \t\n"):
		b.fail("region", "cannot contain whitespace", "Use a region name such as us-east-1 or eu-west-2")
	}

	switch {
	case ref.Owner == "":
		b.fail("account-id", "cannot be empty", "Use the 12-digit account id that owns the secret")
	case !ownerPattern.MatchString(ref.Owner):
		b.fail("account-id", "must be exactly 12 digits", "Account ids are 12 digits, including leading zeros")
	}

	if parts[5] != referenceResourceType {
		b.fail("resource-type", "must be \""+referenceResourceType+"\"", "Secret ARNs contain ':secret:' before the secret name")
	}

	if strings.TrimSpace(ref.ResourceName) == "" {
		b.fail("secret-name", "cannot be empty", "Append the secret name after ':secret:'")
	} else if strings.ContainsAny(ref.ResourceName, " \t\n") {
		b.fail("secret-name", "cannot contain whitespace", "")
	}

	result := b.result()
	if !result.Valid {
		return StoreReference{}, result
	}
	return ref, result
}
