package ctl

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"meloon/internal/services"
)

type seedCmd struct {
	env
}

func (*seedCmd) Name() string     { return "seed" }
func (*seedCmd) Synopsis() string { return "create the default categories for an owner" }
func (*seedCmd) Usage() string {
	return `seed -owner <id> [-db <path>]

  Creates the system income and expense categories for the owner. Nothing
  is created when the owner already has system categories.
`
}

func (c *seedCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlag(f)
	c.ownerFlag(f)
}

func (c *seedCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() {
		return subcommands.ExitUsageError
	}
	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	defer repo.Close()

	n, err := services.NewCategoryService(repo, nil).Seed(ctx, c.owner)
	if err != nil {
		return failure("seeding categories: %v", err)
	}
	fmt.Fprintf(c.out, "created %d categories for owner %d\n", n, c.owner)
	return subcommands.ExitSuccess
}
