package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"meloon/internal/cli"
	"meloon/internal/config"
	"meloon/internal/ctl"
)

func main() {
	cli.LoadEnvFile()
	cli.SetupLogger("meloonctl")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	for _, c := range ctl.Commands(config.Load(), os.Stdout) {
		commander.Register(c, "ledger")
	}

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
