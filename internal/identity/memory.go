package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edusuite/backoffice/internal/session"
)

const issuer = "edusuite-identity"

type account struct {
	id       uuid.UUID
	email    string
	password string
	role     session.Role
	profile  map[string]string
}

func (a *account) principal() *session.Principal {
	return &session.Principal{
		ID:      a.id,
		Role:    a.role,
		Profile: maps.Clone(a.profile),
	}
}

// Memory is an in-memory identity backend for development and tests. It
// verifies registered accounts and issues ES256-signed resume tokens. The
// role returned by Resume is the account's current role, so a role change
// on the backend is reflected the next time a persisted session resumes.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[uuid.UUID]*account

	key *ecdsa.PrivateKey
	ttl time.Duration
}

// MemoryOption configures a Memory backend.
type MemoryOption func(*Memory) error

// WithTokenTTL sets the resume-token validity window.
func WithTokenTTL(d time.Duration) MemoryOption {
	return func(m *Memory) error {
		if d <= 0 {
			return fmt.Errorf("token TTL must be greater than 0")
		}
		m.ttl = d
		return nil
	}
}

// WithSigningKeyPEM uses the given PEM-encoded ECDSA private key instead
// of generating an ephemeral one, so tokens survive process restarts.
func WithSigningKeyPEM(pemKey string) MemoryOption {
	return func(m *Memory) error {
		key, err := jwt.ParseECPrivateKeyFromPEM([]byte(pemKey))
		if err != nil {
			return fmt.Errorf("failed to parse signing key: %w", err)
		}
		m.key = key
		return nil
	}
}

// NewMemory creates an in-memory identity backend. Without
// WithSigningKeyPEM an ephemeral P-256 key is generated.
func NewMemory(opts ...MemoryOption) (*Memory, error) {
	m := &Memory{
		byEmail: make(map[string]*account),
		byID:    make(map[uuid.UUID]*account),
		ttl:     7 * 24 * time.Hour,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	if m.key == nil {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
		m.key = key
	}
	return m, nil
}

// Register adds an account and returns its principal.
func (m *Memory) Register(email, password string, role session.Role, profile map[string]string) (*session.Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[email]; exists {
		return nil, fmt.Errorf("account %q already registered", email)
	}
	a := &account{
		id:       uuid.Must(uuid.NewV7()),
		email:    email,
		password: password,
		role:     role,
		profile:  maps.Clone(profile),
	}
	m.byEmail[email] = a
	m.byID[a.id] = a
	return a.principal(), nil
}

// SetRole changes an account's role. Outstanding resume tokens pick up the
// new role on their next Resume.
func (m *Memory) SetRole(email string, role session.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byEmail[email]
	if !ok {
		return ErrUnknownPrincipal
	}
	a.role = role
	return nil
}

// Verify checks credentials and returns the principal.
func (m *Memory) Verify(ctx context.Context, creds session.Credentials) (*session.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byEmail[creds.Email]
	if !ok || a.password != creds.Password {
		return nil, ErrInvalidCredentials
	}
	return a.principal(), nil
}

// IssueToken creates a signed resume token for the account.
func (m *Memory) IssueToken(email string) (string, error) {
	m.mu.RLock()
	a, ok := m.byEmail[email]
	m.mu.RUnlock()
	if !ok {
		return "", ErrUnknownPrincipal
	}

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		Subject:   a.id.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		Issuer:    issuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	return token.SignedString(m.key)
}

// Resume validates a resume token and returns the current principal.
func (m *Memory) Resume(ctx context.Context, tokenStr string) (*session.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodES256 {
			return nil, errors.New("invalid signing method")
		}
		return &m.key.PublicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, ErrUnknownPrincipal
	}
	return a.principal(), nil
}

// Revoke is a no-op for the stateless in-memory backend: resume tokens
// simply age out at their expiry.
func (m *Memory) Revoke(ctx context.Context) error {
	return nil
}
