// Package credentials resolves the WebDAV password from the OS credential
// store. The secret is written once by the init flow and read at the start
// of every run; the core never touches the keyring mid-run.
package credentials

import (
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
)

// EnvPassword names the environment variable consulted before the OS
// keyring, for non-interactive runs (CI, containers without a secret
// service).
const EnvPassword = "DAVTIDY_PASSWORD"

// ErrNotFound reports that no secret is stored for the service/user pair.
var ErrNotFound = errors.New("no stored credential")

// Store reads and writes one secret per service/user pair.
type Store interface {
	Get(service, username string) (string, error)
	Set(service, username, secret string) error
}

// Keyring is the OS-keyring backed Store.
type Keyring struct{}

// Get reads the stored secret. A missing secret is reported as ErrNotFound.
func (Keyring) Get(service, username string) (string, error) {
	secret, err := keyring.Get(service, username)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w for %s@%s", ErrNotFound, username, service)
		}
		return "", fmt.Errorf("read keyring: %w", err)
	}
	return secret, nil
}

// Set stores the secret, replacing any previous value.
func (Keyring) Set(service, username, secret string) error {
	if err := keyring.Set(service, username, secret); err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

// ServiceName derives the keyring service id from the WebDAV address, so
// secrets for different servers never collide.
func ServiceName(address string) string {
	return address + "-filename-sanitizer"
}

// Resolve returns the password for username, preferring EnvPassword over
// the store.
func Resolve(store Store, service, username string) (string, error) {
	if secret := os.Getenv(EnvPassword); secret != "" {
		return secret, nil
	}
	return store.Get(service, username)
}
