package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/edusuite/backoffice/cmd/backoffice/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode."`
		Version kong.VersionFlag
		Run     commands.RunCmd    `cmd:"" help:"Run the interactive navigation shell"`
		Routes  commands.RoutesCmd `cmd:"" help:"Print the route table with its access requirements"`
		Token   commands.TokenCmd  `cmd:"" help:"Mint a development resume token"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
