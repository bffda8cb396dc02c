// Package route declares and matches the navigable hierarchy: an immutable
// tree of nodes, each optionally gated by a required-role set and
// optionally carrying a view rendered by the layout composer.
package route

import (
	"fmt"
	"strings"

	"github.com/edusuite/backoffice/internal/access"
	"github.com/edusuite/backoffice/internal/layout"
)

// CatchAll is the segment of a wildcard terminal node. It matches any
// remaining path suffix, but only when no sibling matches exactly.
const CatchAll = "*"

// Node is one unit of the navigable hierarchy. A nil Required means the
// node is public; access.Roles() means "authenticated, any role". A node's
// effective requirement is the union of its own and all its ancestors'.
type Node struct {
	// Segment is the path segment this node matches. Empty for the root
	// and for index nodes, CatchAll for wildcard terminals.
	Segment string

	// Required gates entry into this node and everything below it.
	Required *access.RoleSet

	// View is the renderable mounted when this node is on the matched
	// chain. May be nil for structural nodes with no chrome of their own.
	View layout.View

	// Index marks a child rendered when the parent path is matched
	// exactly. Index nodes have an empty segment and no children.
	Index bool

	Children []*Node
}

// Match is the result of resolving a path against the tree: the node chain
// from the root to the matched target.
type Match struct {
	Path  string
	Chain []*Node
}

// Tree is the static route hierarchy, built once at startup and immutable
// thereafter.
type Tree struct {
	root *Node
}

// NewTree validates the node hierarchy and returns the tree.
func NewTree(root *Node) (*Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("route: nil root")
	}
	if root.Segment != "" {
		return nil, fmt.Errorf("route: root segment must be empty, got %q", root.Segment)
	}
	if err := validate(root, "/"); err != nil {
		return nil, err
	}
	return &Tree{root: root}, nil
}

func validate(n *Node, at string) error {
	seen := map[string]bool{}
	index := false
	for _, c := range n.Children {
		switch {
		case c.Index:
			if c.Segment != "" {
				return fmt.Errorf("route: index node under %s has segment %q", at, c.Segment)
			}
			if len(c.Children) > 0 {
				return fmt.Errorf("route: index node under %s has children", at)
			}
			if index {
				return fmt.Errorf("route: duplicate index node under %s", at)
			}
			index = true
		case c.Segment == "":
			return fmt.Errorf("route: non-index child under %s has empty segment", at)
		case c.Segment == CatchAll:
			if len(c.Children) > 0 {
				return fmt.Errorf("route: catch-all under %s must be terminal", at)
			}
			fallthrough
		default:
			if seen[c.Segment] {
				return fmt.Errorf("route: duplicate segment %q under %s", c.Segment, at)
			}
			seen[c.Segment] = true
			if err := validate(c, at+c.Segment+"/"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Match resolves a path to a node chain. Matching is segment-by-segment
// and case-sensitive; an exact child always beats a catch-all sibling. On
// an exact terminal match the node's index child, if any, is appended to
// the chain. Returns false when no node matches the full path.
func (t *Tree) Match(path string) (*Match, bool) {
	cur := t.root
	chain := []*Node{cur}

	for _, seg := range segments(path) {
		next := cur.exactChild(seg)
		if next == nil {
			if w := cur.catchAllChild(); w != nil {
				chain = append(chain, w)
				return &Match{Path: path, Chain: chain}, true
			}
			return nil, false
		}
		cur = next
		chain = append(chain, cur)
	}

	if idx := cur.indexChild(); idx != nil {
		chain = append(chain, idx)
	}
	return &Match{Path: path, Chain: chain}, true
}

func (n *Node) exactChild(seg string) *Node {
	for _, c := range n.Children {
		if !c.Index && c.Segment == seg && c.Segment != CatchAll {
			return c
		}
	}
	return nil
}

func (n *Node) catchAllChild() *Node {
	for _, c := range n.Children {
		if c.Segment == CatchAll {
			return c
		}
	}
	return nil
}

func (n *Node) indexChild() *Node {
	for _, c := range n.Children {
		if c.Index {
			return c
		}
	}
	return nil
}

// EffectiveRequirement returns the union of the requirements along the
// chain. A chain with no requirement anywhere stays nil (public). Because
// union only ever adds roles to the requirement, a descendant's effective
// requirement always contains its ancestors' — access tightens going down,
// never loosens.
func EffectiveRequirement(chain []*Node) *access.RoleSet {
	var req *access.RoleSet
	for _, n := range chain {
		req = req.Union(n.Required)
	}
	return req
}

// Walk visits every node depth-first with its full path, for inspection
// and diagnostics.
func (t *Tree) Walk(fn func(path string, n *Node)) {
	walk(t.root, "/", fn)
}

func walk(n *Node, path string, fn func(string, *Node)) {
	fn(path, n)
	for _, c := range n.Children {
		if c.Index {
			fn(path, c)
			continue
		}
		child := path
		if !strings.HasSuffix(child, "/") {
			child += "/"
		}
		walk(c, child+c.Segment, fn)
	}
}

func segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
