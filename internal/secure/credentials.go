package secure

import (
	"github.com/systmms/secretcfg/pkg/secretconfig"
)

// Credentials is the hand-off form of a resolved payload. The client secret lives in an
// enclave; the remaining fields are not secret.
type Credentials struct {
	tenant          string
	clientID        string
	appDefinitionID string
	apiURL          string
	secret          *SecureBuffer
}

// NewCredentials seals p.ClientSecret. p itself is left untouched.
func NewCredentials(p secretconfig.SecretPayload) *Credentials {
	return &Credentials{
		tenant:          p.Tenant,
		clientID:        p.ClientID,
		appDefinitionID: p.AppDefinitionID,
		apiURL:          p.APIURL,
		secret:          NewSecureBuffer([]byte(p.ClientSecret)),
	}
}

func (c *Credentials) Tenant() string          { return c.tenant }
func (c *Credentials) ClientID() string        { return c.clientID }
func (c *Credentials) AppDefinitionID() string { return c.appDefinitionID }
func (c *Credentials) APIURL() string          { return c.apiURL }

// HasSecret reports whether a non-empty client secret is sealed.
func (c *Credentials) HasSecret() bool {
	return c.secret.Size() > 0
}

// WithSecret opens the client secret for the duration of fn. The slice passed to fn
// is wiped when fn returns and must not be retained.
func (c *Credentials) WithSecret(fn func(secret []byte) error) error {
	locked, err := c.secret.Open()
	if err != nil {
		return err
	}
	defer locked.Destroy()
	return fn(locked.Bytes())
}

// Destroy drops the sealed secret.
func (c *Credentials) Destroy() {
	c.secret.Destroy()
}

// String renders the credentials with the secret masked.
func (c *Credentials) String() string {
	return secretconfig.MaskPayload(secretconfig.SecretPayload{
		Tenant:          c.tenant,
		ClientID:        c.clientID,
		ClientSecret:    secretconfig.MaskToken,
		AppDefinitionID: c.appDefinitionID,
		APIURL:          c.apiURL,
	})
}

// GoString matches String so %#v never prints the enclave.
func (c *Credentials) GoString() string {
	return c.String()
}
