package ctl

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"meloon/internal/config"
	"meloon/internal/report"
	"meloon/internal/services"
	"meloon/internal/storage"
	"meloon/internal/xlsx"
)

func spreadsheetService(cfg *config.Config, repo *storage.SQLiteRepository) *xlsx.Service {
	engine := report.NewEngine(repo.Queries(), nil)
	transactions := services.NewTransactionService(repo, nil, engine, services.TransactionOptions{
		StrictCategoryType: cfg.StrictCategoryType,
		PageSize:           cfg.PageSize,
	})
	debts := services.NewDebtService(repo, nil, cfg.PageSize)
	return xlsx.NewService(repo.Queries(), transactions, debts)
}

type exportCmd struct {
	env
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write an owner's ledger to an xlsx workbook" }
func (*exportCmd) Usage() string {
	return `export -owner <id> [-o <file>] [-db <path>]

  Writes the transactions and debts sheets. The file name defaults to
  meloonmoney_<timestamp>.xlsx in the current directory.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlag(f)
	c.ownerFlag(f)
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() {
		return subcommands.ExitUsageError
	}
	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	defer repo.Close()

	name := c.output
	if name == "" {
		name = xlsx.Filename(time.Now())
	}
	f, err := os.Create(name)
	if err != nil {
		return failure("creating %s: %v", name, err)
	}
	if err := spreadsheetService(c.cfg, repo).Export(ctx, c.owner, f); err != nil {
		f.Close()
		os.Remove(name)
		return failure("exporting: %v", err)
	}
	if err := f.Close(); err != nil {
		return failure("writing %s: %v", name, err)
	}
	fmt.Fprintf(c.out, "exported owner %d to %s\n", c.owner, name)
	return subcommands.ExitSuccess
}

type importCmd struct {
	env
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "add the rows of an xlsx workbook to an owner's ledger" }
func (*importCmd) Usage() string {
	return `import -owner <id> [-db <path>] <file>

  Rows go through the same add path as the API, so balances move. Rows
  naming an unknown account or category are skipped and listed.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlag(f)
	c.ownerFlag(f)
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() || f.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	in, err := os.Open(f.Arg(0))
	if err != nil {
		return failure("%v", err)
	}
	defer in.Close()

	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	defer repo.Close()

	res, err := spreadsheetService(c.cfg, repo).Import(ctx, c.owner, in)
	if err != nil {
		return failure("importing %s: %v (%d rows imported before the failure)", f.Arg(0), err, res.Imported)
	}
	fmt.Fprintf(c.out, "imported %d rows, skipped %d\n", res.Imported, res.Skipped)
	for _, s := range res.SkippedRows {
		fmt.Fprintf(c.out, "  %s row %d: %s\n", s.Sheet, s.Row, s.Reason)
	}
	return subcommands.ExitSuccess
}
