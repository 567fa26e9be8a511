package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// DefaultService is the keyring service the CLI stores its secrets under.
	DefaultService = "bureau"

	// KeySourceURI holds a source URI that embeds credentials.
	KeySourceURI = "source_uri"
	// KeySourceToken holds the bearer token sent to http(s) sources.
	KeySourceToken = "source_token"

	secretFileMode = 0o600
)

// ErrNotFound is returned when no secret is stored under the key.
var ErrNotFound = errors.New("secret not found")

// Store keeps secrets in the OS keyring and falls back to 0600 files in dir
// when the keyring is unavailable.
type Store struct {
	service string
	dir     string
}

// NewStore returns a store for service with dir as the file fallback location.
func NewStore(service, dir string) *Store {
	if service == "" {
		service = DefaultService
	}
	return &Store{service: service, dir: dir}
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, s.service+"_"+key)
}

// Set saves value under key.
func (s *Store) Set(key, value string) error {
	if key == "" || value == "" {
		return errors.New("key and value are required")
	}

	if err := keyring.Set(s.service, key, value); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.setFile(key, value)
	}

	// clean up any file written while the keyring was unavailable
	if s.dir != "" {
		_ = os.Remove(s.path(key))
	}
	return nil
}

// Get returns the value stored under key or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	v, err := keyring.Get(s.service, key)
	if err == nil && v != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain read failed, trying file", "key", key, "error", err)
	}
	return s.getFile(key)
}

// Delete removes key from both the keyring and the file fallback.
func (s *Store) Delete(key string) error {
	kerr := keyring.Delete(s.service, key)
	if kerr != nil && !errors.Is(kerr, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "key", key, "error", kerr)
	}

	ferr := os.ErrNotExist
	if s.dir != "" {
		ferr = os.Remove(s.path(key))
	}

	if kerr != nil && ferr != nil {
		if errors.Is(ferr, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting secret file: %w", ferr)
	}
	return nil
}

func (s *Store) setFile(key, value string) error {
	if s.dir == "" {
		return errors.New("keychain unavailable and no fallback directory configured")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating secret dir %s: %w", s.dir, err)
	}
	return os.WriteFile(s.path(key), []byte(value), secretFileMode)
}

func (s *Store) getFile(key string) (string, error) {
	if s.dir == "" {
		return "", ErrNotFound
	}
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("reading secret file: %w", err)
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", ErrNotFound
	}
	return v, nil
}
