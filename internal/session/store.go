package session

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
)

// Verifier is the identity collaborator boundary. Implementations own
// credential verification, persisted-token validation and revocation,
// including any retry policy.
type Verifier interface {
	// Verify checks login credentials and returns the principal.
	Verify(ctx context.Context, creds Credentials) (*Principal, error)

	// Resume validates a previously persisted session token and returns
	// the principal it belongs to, with the principal's current role.
	Resume(ctx context.Context, token string) (*Principal, error)

	// Revoke invalidates the current session with the identity service.
	Revoke(ctx context.Context) error
}

// Listener receives session change notifications. Listeners are invoked
// synchronously, in registration order, strictly after the store's state
// has been fully updated.
type Listener func(Session)

type registration struct {
	id int
	fn Listener
}

// Store owns the process-wide session. It is the single writer: all
// mutation goes through Login, Logout and Resume. Readers get snapshots
// via Current.
type Store struct {
	verifier Verifier
	token    string

	mu        sync.Mutex
	sess      Session
	listeners []registration
	nextID    int
}

// New creates a Store holding the given persisted token, in StatusResolving.
// Callers must invoke Resume (typically on its own goroutine) to settle the
// resolving state; until then guards treat the session as decision-pending.
func New(verifier Verifier, persistedToken string) *Store {
	return &Store{
		verifier: verifier,
		token:    persistedToken,
		sess:     Session{Status: StatusResolving},
	}
}

// Current returns a snapshot of the latest known session state. Never blocks
// on identity calls.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

// OnChange registers a listener notified whenever the session's status or
// role changes. The returned function unsubscribes it.
func (s *Store) OnChange(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, registration{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(r registration) bool {
			return r.id == id
		})
	}
}

// Login authenticates against the identity service. On success the session
// becomes StatusAuthenticated with the returned principal; on failure it
// becomes StatusFailed with the cause, leaving no principal behind.
func (s *Store) Login(ctx context.Context, creds Credentials) (Session, error) {
	principal, err := s.verifier.Verify(ctx, creds)
	if err != nil {
		next := Session{Status: StatusFailed, Err: err}
		s.set(next)
		log.Debug().Err(err).Msg("login failed")
		return next, err
	}

	next := Session{Status: StatusAuthenticated, Principal: principal}
	s.set(next)
	log.Debug().
		Str("principal_id", principal.ID.String()).
		Str("role", string(principal.Role)).
		Msg("login succeeded")
	return next, nil
}

// Logout revokes the session with the identity service, then
// unconditionally transitions to StatusAnonymous. Calling Logout while
// already anonymous is a no-op.
func (s *Store) Logout(ctx context.Context) {
	if err := s.verifier.Revoke(ctx); err != nil {
		log.Debug().Err(err).Msg("session revocation failed")
	}
	s.set(Session{Status: StatusAnonymous})
}

// Resume validates the persisted token, settling the boot-time
// StatusResolving state. An empty or rejected token settles to
// StatusAnonymous. Resume never overrides a login or logout that
// completed while the identity call was outstanding.
func (s *Store) Resume(ctx context.Context) {
	if s.token == "" {
		s.settleResume(Session{Status: StatusAnonymous})
		return
	}

	principal, err := s.verifier.Resume(ctx, s.token)
	if err != nil {
		log.Debug().Err(err).Msg("session resume rejected")
		s.settleResume(Session{Status: StatusAnonymous})
		return
	}

	log.Debug().
		Str("principal_id", principal.ID.String()).
		Str("role", string(principal.Role)).
		Msg("session resumed")
	s.settleResume(Session{Status: StatusAuthenticated, Principal: principal})
}

// set replaces the session and notifies listeners if status or role changed.
func (s *Store) set(next Session) {
	s.mu.Lock()
	prev := s.sess
	s.sess = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if prev.Status == next.Status && prev.Role() == next.Role() {
		return
	}
	for _, r := range listeners {
		r.fn(next)
	}
}

// settleResume applies the resume outcome only while still resolving.
func (s *Store) settleResume(next Session) {
	s.mu.Lock()
	if s.sess.Status != StatusResolving {
		s.mu.Unlock()
		return
	}
	prev := s.sess
	s.sess = next
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	if prev.Status == next.Status && prev.Role() == next.Role() {
		return
	}
	for _, r := range listeners {
		r.fn(next)
	}
}
