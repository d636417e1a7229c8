package ctl

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"meloon/internal/services"
)

type reconcileCmd struct {
	env
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "check balances against the transaction history" }
func (*reconcileCmd) Usage() string {
	return `reconcile -owner <id> [-db <path>]

  Replays each account's transactions and lists the accounts whose stored
  balance differs. Nothing is written. Exits non-zero when drift is found.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlag(f)
	c.ownerFlag(f)
}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() {
		return subcommands.ExitUsageError
	}
	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	defer repo.Close()

	drifts, err := services.NewAccountService(repo).Reconcile(ctx, c.owner)
	if err != nil {
		return failure("reconciling: %v", err)
	}
	if len(drifts) == 0 {
		fmt.Fprintf(c.out, "all balances of owner %d match their transactions\n", c.owner)
		return subcommands.ExitSuccess
	}
	for _, d := range drifts {
		fmt.Fprintf(c.out, "account %d %q: stored %s, replayed %s\n", d.Account.ID, d.Account.Name, d.Account.Balance, d.Expected)
	}
	return subcommands.ExitFailure
}
