// Package keyring stores lvlup secrets in the OS keyring.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name for every lvlup secret.
const Service = "lvlup"

// Secret names.
const (
	CoachAPIKey   = "coach-api-key"
	TelegramToken = "telegram-token"
	PostgresDSN   = "postgres-dsn"
)

var (
	// ErrNotFound is returned when the secret is not stored.
	ErrNotFound = errors.New("secret not found in keyring")
	// ErrUnavailable is returned when the OS keyring cannot be reached.
	ErrUnavailable = errors.New("OS keyring is not available")
	// ErrUnknownSecret is returned for a name outside Names().
	ErrUnknownSecret = errors.New("unknown secret name")
)

// Names lists the secrets lvlup reads.
func Names() []string {
	return []string{CoachAPIKey, TelegramToken, PostgresDSN}
}

// Get returns the named secret.
func Get(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	v, err := keyring.Get(Service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, nil
}

// Lookup returns the named secret, or "" when it is missing or the keyring
// is unavailable.
func Lookup(name string) string {
	v, err := Get(name)
	if err != nil {
		return ""
	}
	return v
}

// Set stores the named secret.
func Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if value == "" {
		return fmt.Errorf("secret %s cannot be empty", name)
	}
	if err := keyring.Set(Service, name, value); err != nil {
		return fmt.Errorf("storing %s in keyring: %w", name, err)
	}
	return nil
}

// Delete removes the named secret.
func Delete(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if err := keyring.Delete(Service, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting %s from keyring: %w", name, err)
	}
	return nil
}

func checkName(name string) error {
	for _, n := range Names() {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownSecret, name)
}
