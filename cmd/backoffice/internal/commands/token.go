package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/edusuite/backoffice/internal/identity"
	"github.com/edusuite/backoffice/internal/identity/tokenfile"
	"github.com/edusuite/backoffice/internal/session"
)

// TokenCmd mints a resume token against the built-in dev backend. With a
// shared signing key the token can be persisted and resumed by a later
// `run` using the same key.
type TokenCmd struct {
	Email      string        `help:"dev account email" default:"admin@edusuite.dev"`
	Role       string        `help:"dev account role" default:"admin" enum:"super_admin,admin,teacher,staff,none"`
	TTL        time.Duration `help:"token validity window" default:"24h"`
	SigningKey string        `help:"PEM-encoded ECDSA private key file; ephemeral when empty" default:"" env:"BACKOFFICE_SIGNING_KEY"`
	Save       string        `help:"also persist the token to this token file" default:""`
}

func (c *TokenCmd) Run(globals *Globals) error {
	roleName := c.Role
	if roleName == "none" {
		roleName = ""
	}
	role, err := session.ParseRole(roleName)
	if err != nil {
		return err
	}

	opts := []identity.MemoryOption{identity.WithTokenTTL(c.TTL)}
	if c.SigningKey != "" {
		pemKey, err := os.ReadFile(c.SigningKey)
		if err != nil {
			return fmt.Errorf("failed to read signing key: %w", err)
		}
		opts = append(opts, identity.WithSigningKeyPEM(string(pemKey)))
	}

	backend, err := identity.NewMemory(opts...)
	if err != nil {
		return err
	}
	if _, err := backend.Register(c.Email, "dev-password", role, nil); err != nil {
		return err
	}

	token, err := backend.IssueToken(c.Email)
	if err != nil {
		return err
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "fingerprint: %s\n", tokenfile.Fingerprint(token))

	if c.Save != "" {
		store, err := tokenfile.NewStore(c.Save)
		if err != nil {
			return err
		}
		if err := store.Save(token); err != nil {
			return err
		}
	}
	return nil
}
