// Package tokenfile persists the identity-issued session token on the
// local filesystem so a session can resume across process restarts. The
// token itself is opaque; its format belongs to the identity service.
package tokenfile

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mr-tron/base58"
	"github.com/rs/zerolog/log"
)

// ErrNoToken is returned by Load when no token has been persisted.
var ErrNoToken = errors.New("no persisted session token")

type record struct {
	Version     int       `json:"version"`
	Token       string    `json:"token"`
	Fingerprint string    `json:"fingerprint"`
	SavedAt     time.Time `json:"saved_at"`
}

// Store manages the persisted token file.
type Store struct {
	path string
}

// NewStore creates a token store at path. An empty path defaults to
// ~/.backoffice/session.json.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".backoffice", "session.json")
	}
	return &Store{path: path}, nil
}

// Load returns the persisted token, or ErrNoToken when none exists.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("failed to parse token file: %w", err)
	}
	if rec.Token == "" {
		return "", ErrNoToken
	}

	log.Debug().Str("fingerprint", rec.Fingerprint).Msg("loaded persisted session token")
	return rec.Token, nil
}

// Save writes the token with owner-only permissions.
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	rec := record{
		Version:     1,
		Token:       token,
		Fingerprint: Fingerprint(token),
		SavedAt:     time.Now(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	log.Debug().Str("fingerprint", rec.Fingerprint).Msg("persisted session token")
	return nil
}

// Clear removes the persisted token. Clearing an absent file is not an
// error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Fingerprint returns a base58-encoded SHA256 of the token, safe to log
// without exposing the token itself.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base58.Encode(sum[:])
}
