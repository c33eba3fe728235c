package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Server  ServerCmd        `cmd:"" help:"Run the blackjack table server"`
	Client  ClientCmd        `cmd:"" help:"Connect as an interactive client"`
	Bot     BotCmd           `cmd:"" help:"Run a built-in bot against a server"`
	Spawn   SpawnCmd         `cmd:"" help:"Run a server with bots for testing/demos"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Multiplayer blackjack table over WebSockets"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
