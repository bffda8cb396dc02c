package commands

import (
	"fmt"
	"os"

	"github.com/edusuite/backoffice/internal/route"
	"github.com/edusuite/backoffice/internal/site"
)

type RoutesCmd struct {
	Overlay string `help:"optional YAML overlay extending the route table" default:"" env:"BACKOFFICE_SITE_OVERLAY"`
}

func (c *RoutesCmd) Run(globals *Globals) error {
	root := site.Routes()
	if c.Overlay != "" {
		data, err := os.ReadFile(c.Overlay)
		if err != nil {
			return fmt.Errorf("failed to read overlay: %w", err)
		}
		overlay, err := site.ParseOverlay(data)
		if err != nil {
			return err
		}
		if err := overlay.Apply(root); err != nil {
			return err
		}
	}

	tree, err := route.NewTree(root)
	if err != nil {
		return err
	}

	tree.Walk(func(path string, n *route.Node) {
		label := path
		if n.Index {
			label += " (index)"
		}
		fmt.Printf("%-40s %s\n", label, n.Required)
	})
	return nil
}
