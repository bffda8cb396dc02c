package commands

import (
	"fmt"

	"github.com/edusuite/backoffice/internal/identity"
	"github.com/edusuite/backoffice/internal/session"
)

type Globals struct {
	Debug   bool
	Version string
}

// devAccounts are the accounts seeded into the built-in identity backend
// when no identity service URL is configured. One per role tier.
var devAccounts = []struct {
	Email    string
	Password string
	Role     session.Role
	Name     string
}{
	{"root@edusuite.dev", "dev-password", session.RoleSuperAdmin, "Root"},
	{"admin@edusuite.dev", "dev-password", session.RoleAdmin, "Head Admin"},
	{"teacher@edusuite.dev", "dev-password", session.RoleTeacher, "Teacher"},
	{"staff@edusuite.dev", "dev-password", session.RoleStaff, "Office Staff"},
	{"user@edusuite.dev", "dev-password", session.RoleNone, "Plain User"},
}

func seedDevAccounts(backend *identity.Memory) error {
	for _, a := range devAccounts {
		if _, err := backend.Register(a.Email, a.Password, a.Role, map[string]string{"name": a.Name}); err != nil {
			return fmt.Errorf("failed to seed account %s: %w", a.Email, err)
		}
	}
	return nil
}
