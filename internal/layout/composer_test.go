package layout

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingView logs its lifecycle into a shared journal.
type recordingView struct {
	name    string
	journal *[]string
	frame   bool
}

func (v *recordingView) Name() string { return v.name }

func (v *recordingView) Mounted()   { *v.journal = append(*v.journal, "mount:"+v.name) }
func (v *recordingView) Unmounted() { *v.journal = append(*v.journal, "unmount:"+v.name) }

func (v *recordingView) Render(w io.Writer, outlet func(io.Writer) error) error {
	if !v.frame {
		_, err := fmt.Fprintf(w, "[%s]", v.name)
		return err
	}
	if _, err := fmt.Fprintf(w, "<%s>", v.name); err != nil {
		return err
	}
	if err := outlet(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "</%s>", v.name)
	return err
}

func newJournal() (*[]string, func(name string, frame bool) *recordingView) {
	journal := &[]string{}
	return journal, func(name string, frame bool) *recordingView {
		return &recordingView{name: name, journal: journal, frame: frame}
	}
}

func TestMountAncestorsFirstUnmountDeepestFirst(t *testing.T) {
	journal, view := newJournal()
	shell := view("shell", true)
	cms := view("cms", true)
	pages := view("pages", false)

	c := NewComposer()
	c.Mount([]View{shell, cms, pages})
	require.Equal(t, []string{"mount:shell", "mount:cms", "mount:pages"}, *journal)

	*journal = nil
	c.Clear()
	require.Equal(t, []string{"unmount:pages", "unmount:cms", "unmount:shell"}, *journal)
	require.Empty(t, c.Mounted())
}

func TestMountKeepsSharedPrefix(t *testing.T) {
	journal, view := newJournal()
	shell := view("shell", true)
	cms := view("cms", true)
	pages := view("pages", false)
	media := view("media", false)

	c := NewComposer()
	c.Mount([]View{shell, cms, pages})

	*journal = nil
	c.Mount([]View{shell, cms, media})
	// The shared shell and cms frames stay mounted across the sibling swap.
	require.Equal(t, []string{"unmount:pages", "mount:media"}, *journal)
}

func TestMountDivergentChain(t *testing.T) {
	journal, view := newJournal()
	shell := view("shell", true)
	store := view("store", true)
	orders := view("orders", false)
	login := view("login", false)

	c := NewComposer()
	c.Mount([]View{shell, store, orders})

	*journal = nil
	c.Mount([]View{login})
	require.Equal(t, []string{"unmount:orders", "unmount:store", "unmount:shell", "mount:login"}, *journal)
}

func TestRenderComposesOutlets(t *testing.T) {
	_, view := newJournal()
	c := NewComposer()
	c.Mount([]View{view("dash", true), view("cms", true), view("pages", false)})

	var out strings.Builder
	require.NoError(t, c.Render(&out))
	require.Equal(t, "<dash><cms>[pages]</cms></dash>", out.String())
}

func TestRenderEmptyChain(t *testing.T) {
	c := NewComposer()
	var out strings.Builder
	require.NoError(t, c.Render(&out))
	require.Empty(t, out.String())
}

func TestFrameWithEmptyOutlet(t *testing.T) {
	_, view := newJournal()
	c := NewComposer()
	c.Mount([]View{view("forms", true)})

	var out strings.Builder
	require.NoError(t, c.Render(&out))
	require.Equal(t, "<forms></forms>", out.String())
}
