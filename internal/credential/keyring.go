// Package credential stores secrets in the system keyring, falling back
// to an encrypted file backend where no native keychain exists.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "pushcenter"

// Ring wraps an opened system keyring.
type Ring struct {
	ring keyring.Keyring
}

// Open returns a configured keyring.
func Open() (*Ring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/pushcenter/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("pushcenter-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Ring{ring: ring}, nil
}

// Get retrieves a credential value by key.
func (r *Ring) Get(key string) (string, error) {
	item, err := r.ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (r *Ring) Set(key string, value string) error {
	err := r.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key.
func (r *Ring) Delete(key string) error {
	if err := r.ring.Remove(key); err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}
