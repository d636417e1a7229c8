package ctl

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"

	"meloon/internal/core"
	"meloon/internal/report"
)

type reportCmd struct {
	env
	periodType string
	date       string
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "print an owner's month or year report" }
func (*reportCmd) Usage() string {
	return `report -owner <id> [-period MONTH|YEAR] [-date YYYY-MM|YYYY] [-db <path>]

  Prints income and expense totals, expense by category and the monthly
  income trend. Month reports also print the spending advice.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	c.dbFlag(f)
	c.ownerFlag(f)
	f.StringVar(&c.periodType, "period", string(core.PeriodMonth), "MONTH or YEAR")
	f.StringVar(&c.date, "date", "", "YYYY-MM for months, YYYY for years; empty means now")
}

func (c *reportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.requireOwner() {
		return subcommands.ExitUsageError
	}
	period, err := core.ParsePeriod(c.periodType, c.date, time.Now())
	if err != nil {
		return failure("%v", err)
	}
	repo, ok := c.open()
	if !ok {
		return subcommands.ExitFailure
	}
	defer repo.Close()

	engine := report.NewEngine(repo.Queries(), nil)
	r, err := engine.Report(ctx, c.owner, period)
	if err != nil {
		return failure("building report: %v", err)
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s report %s\n", period.Type, period.Label())
	fmt.Fprintf(tw, "income\t%s\n", r.IncomeTotal)
	fmt.Fprintf(tw, "expense\t%s\n", r.ExpenseTotal)
	if len(r.ExpenseByCategory) > 0 {
		fmt.Fprintln(tw, "\ncategory\tamount\tshare")
		for _, ca := range r.ExpenseByCategory {
			fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", ca.Name, ca.Amount, ca.Percent*100)
		}
	}
	fmt.Fprintln(tw, "\nmonth\tincome")
	month := period.Window.Start
	for _, m := range r.IncomeTrend {
		fmt.Fprintf(tw, "%s\t%s\n", month.Format("2006-01"), m)
		month = month.AddDate(0, 1, 0)
	}
	if period.Type == core.PeriodMonth {
		a := report.Advise(r)
		fmt.Fprintf(tw, "\nscore\t%d\n", a.Score)
		fmt.Fprintf(tw, "advice\t%s\n", a.Text)
	}
	if err := tw.Flush(); err != nil {
		return failure("%v", err)
	}
	return subcommands.ExitSuccess
}
