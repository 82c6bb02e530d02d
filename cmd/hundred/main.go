package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version    kong.VersionFlag `short:"v" help:"Show version"`
	Server     ServerCmd        `cmd:"" help:"Run the room server"`
	Bot        BotCmd           `cmd:"" help:"Play a seat in a room with the NPC policy"`
	Simulate   SimulateCmd      `cmd:"" help:"Play many all-NPC games and summarise the results"`
	CreateRoom CreateRoomCmd    `cmd:"create-room" help:"Create a room and print its invite"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("hundred"),
		kong.Description("Server, bots and simulator for the 100 card game"),
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
