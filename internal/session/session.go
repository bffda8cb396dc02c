package session

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is the elevated role carried by an authenticated principal.
// RoleNone is the "authenticated, no elevated role" tier.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleTeacher    Role = "teacher"
	RoleStaff      Role = "staff"
	RoleNone       Role = ""
)

// ParseRole converts a role string to a Role. The empty string is valid
// and maps to RoleNone.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleSuperAdmin, RoleAdmin, RoleTeacher, RoleStaff, RoleNone:
		return Role(s), nil
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Principal represents the authenticated user's identity and role.
// It is owned by the Store: replaced wholesale on login, cleared
// wholesale on logout, never partially mutated from outside.
type Principal struct {
	ID      uuid.UUID
	Role    Role
	Profile map[string]string
}

// Status is the authentication state of the process-wide session.
type Status int

const (
	// StatusResolving is the boot state while a persisted credential is
	// still being validated against the identity service.
	StatusResolving Status = iota
	StatusAnonymous
	StatusAuthenticated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusResolving:
		return "resolving"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Session is the process-wide record of whether, and as whom, the user
// is authenticated. Principal is non-nil iff Status is StatusAuthenticated.
type Session struct {
	Status    Status
	Principal *Principal
	Err       error
}

// Authenticated reports whether the session holds an authenticated principal.
func (s Session) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Role returns the principal's role, or RoleNone when unauthenticated.
func (s Session) Role() Role {
	if s.Principal == nil {
		return RoleNone
	}
	return s.Principal.Role
}

// Credentials are the login credentials forwarded to the identity service.
type Credentials struct {
	Email    string
	Password string
}
