// Package layout mounts chains of renderable views: container views render
// persistent chrome around an outlet, leaves render content. Views are
// opaque to the rest of the system; the composer only mounts, unmounts and
// renders them.
package layout

import (
	"io"
	"slices"
	"sync"
)

// View is an opaque renderable unit supplied by the surrounding
// application. Render receives an outlet callback that renders the
// currently mounted descendant; leaves may ignore it, containers write
// their chrome around it. The callback renders nothing when no descendant
// is mounted.
type View interface {
	Name() string
	Render(w io.Writer, outlet func(io.Writer) error) error
}

// Mounter is implemented by views that want to know when they are mounted.
type Mounter interface {
	Mounted()
}

// Unmounter is implemented by views that want to know when they are
// unmounted. Unmounting a container unmounts all descendants first.
type Unmounter interface {
	Unmounted()
}

// Composer holds the currently mounted view chain, root first. Mounting a
// new chain keeps the shared ancestor prefix mounted, unmounts the
// divergent old suffix deepest-first, and mounts the new suffix ancestors
// first.
type Composer struct {
	mu      sync.Mutex
	mounted []View
}

func NewComposer() *Composer {
	return &Composer{}
}

// Mount replaces the mounted chain with the given one.
func (c *Composer) Mount(chain []View) {
	c.mu.Lock()
	defer c.mu.Unlock()

	shared := 0
	for shared < len(c.mounted) && shared < len(chain) && c.mounted[shared] == chain[shared] {
		shared++
	}

	for i := len(c.mounted) - 1; i >= shared; i-- {
		if u, ok := c.mounted[i].(Unmounter); ok {
			u.Unmounted()
		}
	}
	for i := shared; i < len(chain); i++ {
		if m, ok := chain[i].(Mounter); ok {
			m.Mounted()
		}
	}
	c.mounted = slices.Clone(chain)
}

// Clear unmounts everything, deepest first.
func (c *Composer) Clear() {
	c.Mount(nil)
}

// Mounted returns the mounted chain, root first.
func (c *Composer) Mounted() []View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.mounted)
}

// Render writes the composed output of the mounted chain: each container
// renders its chrome with its outlet rendering the next view in the chain.
// An empty chain renders nothing.
func (c *Composer) Render(w io.Writer) error {
	chain := c.Mounted()
	return renderFrom(w, chain, 0)
}

func renderFrom(w io.Writer, chain []View, i int) error {
	if i >= len(chain) {
		return nil
	}
	return chain[i].Render(w, func(inner io.Writer) error {
		return renderFrom(inner, chain, i+1)
	})
}
