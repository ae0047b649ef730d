package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "email-assistant"

// Well-known credential keys.
const (
	KeyAPIKey       = "anthropic-api-key"
	KeySMTPPassword = "smtp-password"
	KeyIMAPPassword = "imap-password"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/email-assistant/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("email-assistant-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Resolve returns the credential for key, preferring the environment
// variable envVar over the keyring. Credentials are read once at
// startup and never mutated afterwards.
func Resolve(envVar, key string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	v, err := Get(key)
	if err != nil {
		return ""
	}
	return v
}
