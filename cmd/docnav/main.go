package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docnav/cmd/docnav/commands"
	ferrors "git.home.luguber.info/inful/docnav/internal/foundation/errors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docnav"),
		kong.Description("Navigate a versioned documentation site from the terminal."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout, In: os.Stdin}
	if err := parser.Run(global, cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
