package site

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edusuite/backoffice/internal/access"
	"github.com/edusuite/backoffice/internal/route"
	"github.com/edusuite/backoffice/internal/session"
)

// Overlay is a deployment-supplied extension of the route table, applied
// before the tree is sealed. It can add routes and re-gate existing ones.
type Overlay struct {
	Routes []OverlayRoute `yaml:"routes"`
}

// OverlayRoute gates one path. Roles distinguishes three cases the same
// way the tree does: key absent (nil) leaves the gate untouched (new
// nodes stay public), an empty list requires authentication with any
// role, a non-empty list requires one of the named roles.
type OverlayRoute struct {
	Path  string    `yaml:"path"`
	Roles *[]string `yaml:"roles"`
}

// ParseOverlay decodes an overlay document.
func ParseOverlay(data []byte) (*Overlay, error) {
	var o Overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse site overlay: %w", err)
	}
	for _, r := range o.Routes {
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("overlay path %q must be absolute", r.Path)
		}
	}
	return &o, nil
}

// Apply merges the overlay into the node hierarchy. Missing intermediate
// nodes are created as ungated pages named after their segment.
func (o *Overlay) Apply(root *route.Node) error {
	for _, r := range o.Routes {
		node, err := ensurePath(root, r.Path)
		if err != nil {
			return err
		}
		if r.Roles == nil {
			continue
		}
		required, err := parseRoles(*r.Roles)
		if err != nil {
			return fmt.Errorf("overlay path %q: %w", r.Path, err)
		}
		node.Required = required
	}
	return nil
}

func ensurePath(root *route.Node, path string) (*route.Node, error) {
	cur := root
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return root, nil
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == route.CatchAll {
			return nil, fmt.Errorf("overlay path %q may not contain a wildcard", path)
		}
		next := findChild(cur, seg)
		if next == nil {
			next = &route.Node{Segment: seg, View: NewPage(seg)}
			cur.Children = append(cur.Children, next)
		}
		cur = next
	}
	return cur, nil
}

func findChild(n *route.Node, seg string) *route.Node {
	for _, c := range n.Children {
		if !c.Index && c.Segment == seg {
			return c
		}
	}
	return nil
}

func parseRoles(names []string) (*access.RoleSet, error) {
	roles := make([]session.Role, 0, len(names))
	for _, name := range names {
		role, err := session.ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return access.Roles(roles...), nil
}
