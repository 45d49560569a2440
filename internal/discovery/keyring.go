package discovery

import (
	"context"
	"errors"

	"github.com/zalando/go-keyring"
)

// KeyringDiscoverer reads the value from the OS keyring (Keychain, Secret Service,
// Windows Credential Manager).
type KeyringDiscoverer struct {
	service string
	account string
}

// NewKeyringDiscoverer returns a discoverer for the given keyring item.
func NewKeyringDiscoverer(service, account string) *KeyringDiscoverer {
	return &KeyringDiscoverer{service: service, account: account}
}

func (d *KeyringDiscoverer) Name() string {
	return "keyring item " + d.service + "/" + d.account
}

func (d *KeyringDiscoverer) Discover(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, err := keyring.Get(d.service, d.account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, value != "", nil
}
