package site

import (
	"fmt"
	"io"
)

// Page is a leaf screen. The real form/table/chart content is supplied by
// presentation collaborators; the navigation core only needs a named
// renderable to mount.
type Page struct {
	name string
}

func NewPage(name string) *Page {
	return &Page{name: name}
}

func (p *Page) Name() string { return p.name }

func (p *Page) Render(w io.Writer, outlet func(io.Writer) error) error {
	_, err := fmt.Fprintf(w, "[%s]\n", p.name)
	return err
}

// Shell is a container screen: persistent chrome (navigation, header)
// around an outlet where the matched descendant mounts.
type Shell struct {
	name  string
	title string
}

func NewShell(name, title string) *Shell {
	return &Shell{name: name, title: title}
}

func (s *Shell) Name() string { return s.name }

func (s *Shell) Render(w io.Writer, outlet func(io.Writer) error) error {
	if _, err := fmt.Fprintf(w, "=== %s ===\n", s.title); err != nil {
		return err
	}
	if outlet != nil {
		if err := outlet(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "=== end %s ===\n", s.name)
	return err
}
