package ctl

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"meloon/internal/storage"
)

type migrateCmd struct {
	env
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending schema migrations" }
func (*migrateCmd) Usage() string {
	return `migrate [-db <path>]

  Brings the database schema up to date and prints the applied version.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) { c.dbFlag(f) }

func (c *migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	repo.Close()

	version, dirty, err := storage.SchemaVersion(storage.DSN(c.dbPath))
	if err != nil {
		return failure("%v", err)
	}
	if dirty {
		return failure("schema version %d is dirty", version)
	}
	fmt.Fprintf(c.out, "schema at version %d\n", version)
	return subcommands.ExitSuccess
}
