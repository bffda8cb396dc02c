package route

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edusuite/backoffice/internal/access"
	"github.com/edusuite/backoffice/internal/session"
)

func testTree(t *testing.T) *Tree {
	t.Helper()

	root := &Node{
		Children: []*Node{
			{Index: true},
			{Segment: "about"},
			{
				Segment:  "admin",
				Required: access.Roles(),
				Children: []*Node{
					{Index: true},
					{Segment: "reports", Required: access.Roles(session.RoleAdmin)},
					{
						Segment:  "cms",
						Required: access.Roles(session.RoleSuperAdmin),
						Children: []*Node{
							{Segment: "pages"},
							{Segment: CatchAll},
						},
					},
				},
			},
		},
	}

	tree, err := NewTree(root)
	require.NoError(t, err)
	return tree
}

func chainSegments(m *Match) []string {
	segs := make([]string, len(m.Chain))
	for i, n := range m.Chain {
		segs[i] = n.Segment
	}
	return segs
}

func TestMatch(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		name     string
		path     string
		ok       bool
		segments []string
	}{
		{
			name:     "root matches with index child",
			path:     "/",
			ok:       true,
			segments: []string{"", ""},
		},
		{
			name:     "top level page",
			path:     "/about",
			ok:       true,
			segments: []string{"", "about"},
		},
		{
			name:     "exact parent match appends index",
			path:     "/admin",
			ok:       true,
			segments: []string{"", "admin", ""},
		},
		{
			name:     "exact match beats catch-all",
			path:     "/admin/cms/pages",
			ok:       true,
			segments: []string{"", "admin", "cms", "pages"},
		},
		{
			name:     "catch-all consumes unmatched suffix",
			path:     "/admin/cms/media/uploads",
			ok:       true,
			segments: []string{"", "admin", "cms", "*"},
		},
		{
			name: "unmatched path",
			path: "/does/not/exist",
			ok:   false,
		},
		{
			name: "matching is case-sensitive",
			path: "/About",
			ok:   false,
		},
		{
			name:     "duplicate slashes normalized",
			path:     "//admin//reports",
			ok:       true,
			segments: []string{"", "admin", "reports"},
		},
		{
			name:     "trailing slash ignored",
			path:     "/admin/reports/",
			ok:       true,
			segments: []string{"", "admin", "reports"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tree.Match(tt.path)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.segments, chainSegments(m))
			}
		})
	}
}

func TestEffectiveRequirement(t *testing.T) {
	tree := testTree(t)

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "public chain stays public", path: "/about", expected: "public"},
		{name: "authenticated shell", path: "/admin", expected: "authenticated"},
		{name: "child adds its roles", path: "/admin/reports", expected: "admin"},
		{name: "deep chain unions ancestors", path: "/admin/cms/pages", expected: "super_admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := tree.Match(tt.path)
			require.True(t, ok)
			require.Equal(t, tt.expected, EffectiveRequirement(m.Chain).String())
		})
	}
}

func TestEffectiveRequirementOnlyTightens(t *testing.T) {
	tree := testTree(t)

	// For every matched chain, each prefix's effective requirement roles
	// are contained in the full chain's.
	for _, path := range []string{"/", "/about", "/admin", "/admin/reports", "/admin/cms/pages"} {
		m, ok := tree.Match(path)
		require.True(t, ok)

		full := EffectiveRequirement(m.Chain)
		for i := 1; i <= len(m.Chain); i++ {
			prefix := EffectiveRequirement(m.Chain[:i])
			for _, r := range prefix.Members() {
				require.True(t, full.Contains(r), "path %s prefix %d role %s", path, i, r)
			}
		}
	}
}

func TestNewTreeValidation(t *testing.T) {
	tests := []struct {
		name string
		root *Node
	}{
		{name: "nil root", root: nil},
		{name: "root with segment", root: &Node{Segment: "x"}},
		{
			name: "duplicate sibling segments",
			root: &Node{Children: []*Node{{Segment: "a"}, {Segment: "a"}}},
		},
		{
			name: "index with segment",
			root: &Node{Children: []*Node{{Index: true, Segment: "a"}}},
		},
		{
			name: "index with children",
			root: &Node{Children: []*Node{{Index: true, Children: []*Node{{Segment: "a"}}}}},
		},
		{
			name: "duplicate index nodes",
			root: &Node{Children: []*Node{{Index: true}, {Index: true}}},
		},
		{
			name: "catch-all with children",
			root: &Node{Children: []*Node{{Segment: CatchAll, Children: []*Node{{Segment: "a"}}}}},
		},
		{
			name: "empty segment on non-index child",
			root: &Node{Children: []*Node{{Segment: ""}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTree(tt.root)
			require.Error(t, err)
		})
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	tree := testTree(t)

	paths := map[string]int{}
	tree.Walk(func(path string, n *Node) {
		paths[path]++
	})

	require.Contains(t, paths, "/admin/cms/pages")
	require.Contains(t, paths, "/admin/cms/*")
	// Root and its index node share the root path.
	require.Equal(t, 2, paths["/"])
}
