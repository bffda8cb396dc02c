// Package access implements the role policy: the pure decision function
// mapping a route requirement and the current session to an access decision.
package access

import (
	"fmt"
	"slices"
	"strings"

	"github.com/edusuite/backoffice/internal/session"
)

// Decision is the outcome of evaluating a requirement against a session.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyInsufficientRole
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny-unauthenticated"
	case DenyInsufficientRole:
		return "deny-insufficient-role"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// RoleSet is a route node's required-role set. A nil *RoleSet means the
// node is public; a non-nil empty set means "authenticated, any role".
// The two are deliberately distinct and must not be collapsed.
type RoleSet struct {
	members []session.Role
}

// Roles builds a requirement set. Roles() with no arguments is the
// explicit empty set: any authenticated principal passes.
func Roles(members ...session.Role) *RoleSet {
	s := &RoleSet{members: slices.Clone(members)}
	slices.Sort(s.members)
	s.members = slices.Compact(s.members)
	return s
}

// Contains reports whether the role is a member of the set.
func (s *RoleSet) Contains(r session.Role) bool {
	if s == nil {
		return false
	}
	return slices.Contains(s.members, r)
}

// Empty reports whether the set is the explicit empty requirement.
func (s *RoleSet) Empty() bool {
	return s != nil && len(s.members) == 0
}

// Members returns the roles in the set, sorted.
func (s *RoleSet) Members() []session.Role {
	if s == nil {
		return nil
	}
	return slices.Clone(s.members)
}

// Union combines two requirement sets. Absent (nil) unions transparently:
// nil ∪ x = x, so a chain with no requirements anywhere stays public.
func (s *RoleSet) Union(o *RoleSet) *RoleSet {
	if s == nil {
		return o
	}
	if o == nil {
		return s
	}
	return Roles(append(s.Members(), o.members...)...)
}

func (s *RoleSet) String() string {
	if s == nil {
		return "public"
	}
	if len(s.members) == 0 {
		return "authenticated"
	}
	parts := make([]string, len(s.members))
	for i, r := range s.members {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// Decide evaluates the requirement against the session. It is pure: no
// side effects, no dependence on anything but its arguments.
//
//   - required == nil: Allow, regardless of session status.
//   - session not authenticated: DenyUnauthenticated, regardless of the
//     set's contents.
//   - authenticated but role not in a non-empty set: DenyInsufficientRole.
//   - otherwise Allow (the empty set admits any authenticated role).
func Decide(required *RoleSet, sess session.Session) Decision {
	if required == nil {
		return Allow
	}
	if !sess.Authenticated() {
		return DenyUnauthenticated
	}
	if required.Empty() || required.Contains(sess.Role()) {
		return Allow
	}
	return DenyInsufficientRole
}
