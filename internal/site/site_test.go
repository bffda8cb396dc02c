package site

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edusuite/backoffice/internal/route"
)

func TestTreeBuilds(t *testing.T) {
	tree, err := Tree()
	require.NoError(t, err)
	require.NotNil(t, tree)
}

func TestEffectiveGates(t *testing.T) {
	tree, err := Tree()
	require.NoError(t, err)

	tests := []struct {
		path     string
		expected string
	}{
		// Public marketing pages
		{path: "/", expected: "public"},
		{path: "/pricing", expected: "public"},
		{path: "/store", expected: "public"},
		{path: "/login", expected: "public"},

		// Authenticated shell and its ungated sections
		{path: "/dashboard", expected: "authenticated"},
		{path: "/dashboard/profile", expected: "authenticated"},
		{path: "/dashboard/notifications", expected: "authenticated"},
		{path: "/dashboard/settings", expected: "authenticated"},
		{path: "/dashboard/store", expected: "authenticated"},
		{path: "/dashboard/store/orders", expected: "authenticated"},

		// Role-gated sections
		{path: "/dashboard/schools", expected: "super_admin"},
		{path: "/dashboard/users", expected: "super_admin"},
		{path: "/dashboard/finances", expected: "admin"},
		{path: "/dashboard/classes", expected: "admin,teacher"},
		{path: "/dashboard/students", expected: "admin,staff,teacher"},
		{path: "/dashboard/schedule", expected: "teacher"},
		{path: "/dashboard/records", expected: "staff"},
		{path: "/dashboard/announcements", expected: "admin,staff,teacher"},

		// Nested shells
		{path: "/dashboard/forms", expected: "super_admin"},
		{path: "/dashboard/forms/demo-requests", expected: "super_admin"},
		{path: "/dashboard/cms", expected: "super_admin"},
		{path: "/dashboard/cms/pages", expected: "super_admin"},
		{path: "/dashboard/cms/settings", expected: "super_admin"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := tree.Match(tt.path)
			require.True(t, ok, "path must match")
			require.Equal(t, tt.expected, route.EffectiveRequirement(m.Chain).String())
		})
	}
}

func TestAccessOnlyTightensDescending(t *testing.T) {
	tree, err := Tree()
	require.NoError(t, err)

	tree.Walk(func(path string, n *route.Node) {
		m, ok := tree.Match(path)
		require.True(t, ok, "declared path %s must match", path)

		full := route.EffectiveRequirement(m.Chain)
		for i := 1; i < len(m.Chain); i++ {
			prefix := route.EffectiveRequirement(m.Chain[:i])
			for _, r := range prefix.Members() {
				require.True(t, full.Contains(r),
					"requirement for %s must contain ancestor role %s", path, r)
			}
		}
	})
}

func TestShellsMountAsContainers(t *testing.T) {
	tree, err := Tree()
	require.NoError(t, err)

	m, ok := tree.Match("/dashboard/cms/pages")
	require.True(t, ok)

	var names []string
	for _, n := range m.Chain {
		if n.View != nil {
			names = append(names, n.View.Name())
		}
	}
	require.Equal(t, []string{"dashboard", "cms", "pages-manager"}, names)
}

func TestOverlayAddsAndRegatesRoutes(t *testing.T) {
	doc := []byte(`
routes:
  - path: /dashboard/library
    roles: [admin, staff]
  - path: /dashboard/notifications
    roles: []
  - path: /careers
`)

	overlay, err := ParseOverlay(doc)
	require.NoError(t, err)

	root := Routes()
	require.NoError(t, overlay.Apply(root))

	tree, err := route.NewTree(root)
	require.NoError(t, err)

	m, ok := tree.Match("/dashboard/library")
	require.True(t, ok)
	require.Equal(t, "admin,staff", route.EffectiveRequirement(m.Chain).String())

	// roles: [] is the explicit empty set, not public.
	m, ok = tree.Match("/dashboard/notifications")
	require.True(t, ok)
	require.Equal(t, "authenticated", route.EffectiveRequirement(m.Chain).String())

	// No roles key at all: the new node is public.
	m, ok = tree.Match("/careers")
	require.True(t, ok)
	require.Equal(t, "public", route.EffectiveRequirement(m.Chain).String())
}

func TestOverlayRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "relative path", doc: "routes:\n  - path: dashboard/x\n"},
		{name: "unknown role", doc: "routes:\n  - path: /x\n    roles: [principal-of-everything]\n"},
		{name: "wildcard path", doc: "routes:\n  - path: /x/*\n"},
		{name: "not yaml", doc: "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			overlay, err := ParseOverlay([]byte(tt.doc))
			if err == nil {
				err = overlay.Apply(Routes())
			}
			require.Error(t, err)
		})
	}
}
