// Package keyring stores the activity API bearer token in the OS keyring.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/activities/internal/constants"
)

var (
	// ErrNotFound is returned when no token is stored for the user
	ErrNotFound = errors.New("api token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Entry addresses one secret in the keyring. The zero value is not usable; use Default.
type Entry struct {
	Service string
	User    string
}

// Default is the entry the CLI reads the API token from.
func Default() Entry {
	return Entry{Service: constants.AppName, User: constants.DefaultKeyringUser}
}

// For returns the entry for a named profile, e.g. one per API URL.
func For(profile string) Entry {
	if strings.TrimSpace(profile) == "" {
		return Default()
	}
	return Entry{Service: constants.AppName, User: constants.DefaultKeyringUser + ":" + profile}
}

// Token returns the stored token.
func (e Entry) Token() (string, error) {
	token, err := keyring.Get(e.Service, e.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetToken stores token, replacing any previous value.
func (e Entry) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(e.Service, e.User, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// DeleteToken removes the stored token.
func (e Entry) DeleteToken() error {
	err := keyring.Delete(e.Service, e.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}

// ResolveToken picks the token the gateway should send: an explicit value wins,
// then the keyring. A missing or unavailable keyring yields "" without error.
func ResolveToken(explicit string, e Entry) string {
	if t := strings.TrimSpace(explicit); t != "" {
		return t
	}
	token, err := e.Token()
	if err != nil {
		return ""
	}
	return token
}
