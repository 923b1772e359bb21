package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "activitysync"

// ProviderTokenKey is the keyring entry holding the REST provider token.
const ProviderTokenKey = "provider-token"

// ErrNotFound is returned when the requested credential does not exist.
var ErrNotFound = errors.New("credential not found")

// Ring is a thin wrapper over an OS keyring. It also satisfies the
// key-value contract used by the seen-marker store, so the marker can live
// in the keyring when no database is wanted.
type Ring struct {
	ring keyring.Keyring
}

// Open returns a Ring backed by the system keyring, falling back to an
// encrypted file under dir.
func Open(dir string) (*Ring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  dir,
		FilePasswordFunc:         keyring.FixedStringPrompt("activitysync-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &Ring{ring: ring}, nil
}

// New wraps an existing keyring. Tests pass keyring.NewArrayKeyring.
func New(ring keyring.Keyring) *Ring {
	return &Ring{ring: ring}
}

// Get retrieves a credential value by key.
func (r *Ring) Get(key string) (string, error) {
	item, err := r.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (r *Ring) Set(key string, value string) error {
	err := r.ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: serviceName + " " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key.
func (r *Ring) Delete(key string) error {
	err := r.ring.Remove(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// GetValue implements the marker store's key-value contract. A missing
// entry is reported as absent, not as an error.
func (r *Ring) GetValue(_ context.Context, key string) (string, bool, error) {
	v, err := r.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// SetValue implements the marker store's key-value contract.
func (r *Ring) SetValue(_ context.Context, key, value string) error {
	return r.Set(key, value)
}

// ResolveToken returns configured when non-empty, otherwise the token
// stored under ProviderTokenKey. A missing entry yields "" and no error.
func (r *Ring) ResolveToken(configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	token, err := r.Get(ProviderTokenKey)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}
