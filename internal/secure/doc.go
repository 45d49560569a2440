// Package secure keeps resolved credentials out of plain process memory.
//
// The client secret of a resolved configuration is sealed in a memguard enclave
// (encrypted with XSalsa20Poly1305, mlocked where the platform allows) as soon as the
// service has resolved it. Code that needs the plaintext opens it for the duration of a
// callback:
//
//	creds := secure.NewCredentials(*cfg.Payload)
//	defer creds.Destroy()
//
//	err := creds.WithSecret(func(secret []byte) error {
//	    return client.Authenticate(creds.ClientID(), secret)
//	})
//
// Call memguard.Purge (or secure.Purge) before exit to wipe every enclave key.
//
// It does NOT protect against attackers with access to the running process.
package secure
