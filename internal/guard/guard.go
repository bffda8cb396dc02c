// Package guard intercepts navigation into the route tree: it evaluates
// the role policy over the matched node chain, mounts allowed chains via
// the layout composer, and issues the redirect policy on deny. While a
// protected chain is mounted it stays subscribed to session changes and
// re-evaluates synchronously, so a screen never renders past a deny
// transition.
package guard

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edusuite/backoffice/internal/access"
	"github.com/edusuite/backoffice/internal/layout"
	"github.com/edusuite/backoffice/internal/route"
	"github.com/edusuite/backoffice/internal/session"
)

// State is the resolution of a navigation attempt for the path the caller
// asked for, before any redirect is followed.
type State int

const (
	// StatePending means the session is still resolving; a neutral empty
	// render is shown and the attempt re-evaluates on the next session
	// change. Never an implicit allow or deny.
	StatePending State = iota
	StateAllowed
	StateDeniedUnauthenticated
	StateDeniedRole
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAllowed:
		return "allowed"
	case StateDeniedUnauthenticated:
		return "denied-unauthenticated"
	case StateDeniedRole:
		return "denied-insufficient-role"
	case StateNotFound:
		return "not-found"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Result reports the outcome of a navigation attempt. Rendered is the path
// whose chain ended up mounted after following the redirect policy; it is
// empty while the attempt is pending.
type Result struct {
	State     State
	Requested string
	Rendered  string
}

// Redirected reports whether the attempt landed somewhere other than the
// requested path.
func (r Result) Redirected() bool {
	return r.Rendered != "" && r.Rendered != r.Requested
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLoginPath sets the redirect target for unauthenticated denials.
func WithLoginPath(p string) Option { return func(n *Navigator) { n.login = p } }

// WithLandingPath sets the safe default landing node for insufficient-role
// denials.
func WithLandingPath(p string) Option { return func(n *Navigator) { n.landing = p } }

// WithRootPath sets the terminal fallback for unmatched paths.
func WithRootPath(p string) Option { return func(n *Navigator) { n.root = p } }

// redirect hops are bounded so a misconfigured tree (say, a protected
// login node) cannot loop the guard.
const maxRedirects = 4

// Navigator runs the access decision for every navigation attempt and
// keeps the composer's mounted chain consistent with the current session.
type Navigator struct {
	tree     *route.Tree
	sessions *session.Store
	comp     *layout.Composer

	login   string
	landing string
	root    string

	mu sync.Mutex
	// pendingPath holds the latest navigation awaiting session
	// resolution. A newer navigation overwrites it, so a superseded
	// attempt's decision is never applied.
	pendingPath string
	mountedPath string

	unsub func()
}

// New builds a Navigator and subscribes it to session changes. Call Close
// to unsubscribe.
func New(tree *route.Tree, sessions *session.Store, comp *layout.Composer, opts ...Option) *Navigator {
	n := &Navigator{
		tree:     tree,
		sessions: sessions,
		comp:     comp,
		login:    "/login",
		landing:  "/dashboard",
		root:     "/",
	}
	for _, opt := range opts {
		opt(n)
	}
	n.unsub = sessions.OnChange(n.onSessionChange)
	return n
}

// Close unsubscribes the navigator from session changes.
func (n *Navigator) Close() {
	if n.unsub != nil {
		n.unsub()
		n.unsub = nil
	}
}

// Navigate resolves a path against the route tree and current session,
// mounting the result or following the redirect policy. It supersedes any
// navigation still pending on session resolution.
func (n *Navigator) Navigate(path string) Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pendingPath = ""
	return n.evaluate(path, n.sessions.Current())
}

// MountedPath returns the path whose chain is currently mounted, or ""
// when nothing is mounted.
func (n *Navigator) MountedPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.mountedPath
}

// evaluate walks the redirect policy to a stable render. Callers hold n.mu.
func (n *Navigator) evaluate(requested string, sess session.Session) Result {
	res := Result{Requested: requested}
	path := requested

	for hop := 0; hop <= maxRedirects; hop++ {
		m, ok := n.tree.Match(path)
		if !ok {
			// Terminal fallback, not an error.
			if hop == 0 {
				res.State = StateNotFound
			}
			if path == n.root {
				break
			}
			log.Debug().Str("path", path).Str("target", n.root).Msg("unmatched path, falling back to root")
			path = n.root
			continue
		}

		required := route.EffectiveRequirement(m.Chain)

		if required != nil && sess.Status == session.StatusResolving {
			// Decision pending: hold a neutral render until the store's
			// next change notification, then re-evaluate. Prevents a
			// false deny redirect while a persisted session is still
			// being validated.
			if hop == 0 {
				res.State = StatePending
			}
			n.pendingPath = path
			n.mountedPath = ""
			n.comp.Clear()
			log.Debug().Str("path", path).Msg("session resolving, navigation held pending")
			return res
		}

		switch d := access.Decide(required, sess); d {
		case access.Allow:
			if hop == 0 {
				res.State = StateAllowed
			}
			n.mount(path, m)
			res.Rendered = path
			log.Debug().
				Str("path", path).
				Str("requested", requested).
				Stringer("requirement", required).
				Msg("navigation allowed")
			return res

		case access.DenyUnauthenticated:
			// The in-flight navigation is discarded; the requested path
			// is not preserved for a post-login return.
			if hop == 0 {
				res.State = StateDeniedUnauthenticated
			}
			log.Debug().Str("path", path).Str("target", n.login).Msg("unauthenticated, redirecting to login")
			path = n.login

		case access.DenyInsufficientRole:
			// Expected decision outcome, not a fault. Redirect to the
			// default landing node, leaking nothing about the denied
			// node beyond the redirect itself.
			if hop == 0 {
				res.State = StateDeniedRole
			}
			log.Debug().Str("path", path).Str("target", n.landing).Msg("insufficient role, redirecting to landing")
			path = n.landing
		}
	}

	// No mountable target within the redirect bound; render nothing.
	log.Error().Str("requested", requested).Msg("no mountable route within redirect bound")
	n.mountedPath = ""
	n.comp.Clear()
	return res
}

func (n *Navigator) mount(path string, m *route.Match) {
	views := make([]layout.View, 0, len(m.Chain))
	for _, node := range m.Chain {
		if node.View != nil {
			views = append(views, node.View)
		}
	}
	n.comp.Mount(views)
	n.mountedPath = path
}

// onSessionChange runs synchronously with the store's notification. It
// resolves a held pending navigation, and re-evaluates the mounted chain
// so a previously allowed screen unmounts the moment its decision flips.
func (n *Navigator) onSessionChange(sess session.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pendingPath != "" {
		path := n.pendingPath
		n.pendingPath = ""
		n.evaluate(path, sess)
		return
	}

	if n.mountedPath == "" {
		return
	}

	m, ok := n.tree.Match(n.mountedPath)
	if !ok {
		n.evaluate(n.root, sess)
		return
	}
	if access.Decide(route.EffectiveRequirement(m.Chain), sess) != access.Allow {
		log.Debug().Str("path", n.mountedPath).Msg("mounted screen lost access, re-evaluating")
		n.evaluate(n.mountedPath, sess)
	}
}
