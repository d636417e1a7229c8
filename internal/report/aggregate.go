// Package report is the read-only aggregation engine: windowed totals,
// category breakdowns, income trends and the spending advice score.
package report

import (
	"fmt"
	"sort"

	"meloon/internal/core"
)

const (
	// percentPlaces is the precision of category shares.
	percentPlaces = 6

	minScore = 60
	maxScore = 100
	// one score point per 1000.00 of monthly expense
	centsPerPoint = 100_000
)

// Summarize aggregates entries inside p's window. Entries outside the window
// are ignored, so callers may pass a superset.
func Summarize(p core.Period, entries []core.Entry) core.Report {
	months := p.Window.Months()
	r := core.Report{
		Period:            p,
		ExpenseByCategory: []core.CategoryAmount{},
		IncomeTrend:       make([]core.Money, len(months)),
	}

	byCategory := map[string]int64{}
	for _, e := range entries {
		if !p.Window.Contains(e.Time) {
			continue
		}
		switch e.Type {
		case core.Income:
			r.IncomeTotal.Cents += e.Amount.Cents
			for i, m := range months {
				if m.Contains(e.Time) {
					r.IncomeTrend[i].Cents += e.Amount.Cents
					break
				}
			}
		case core.Expense:
			r.ExpenseTotal.Cents += e.Amount.Cents
			byCategory[e.CategoryName] += e.Amount.Cents
		}
	}

	for name, cents := range byCategory {
		r.ExpenseByCategory = append(r.ExpenseByCategory, core.CategoryAmount{
			Name:    name,
			Amount:  core.Cents(cents),
			Percent: share(cents, r.ExpenseTotal.Cents),
		})
	}
	sort.Slice(r.ExpenseByCategory, func(i, j int) bool {
		a, b := r.ExpenseByCategory[i], r.ExpenseByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})
	return r
}

// share is part/total, exactly 0 when total is 0.
func share(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return core.Cents(part).Decimal().DivRound(core.Cents(total).Decimal(), percentPlaces).InexactFloat64()
}

// Score maps a month's expense total onto 60..100. The floor is taken on
// whole currency thousands.
func Score(expense core.Money) int {
	if expense.Cents <= 0 {
		return maxScore
	}
	return max(minScore, maxScore-int(expense.Cents/centsPerPoint))
}

// Advise builds the advice for a month report.
func Advise(r core.Report) core.Advice {
	a := core.Advice{Score: Score(r.ExpenseTotal)}
	if len(r.ExpenseByCategory) == 0 {
		a.Text = "You spent little this month. Keep up the good habits."
		return a
	}
	top := r.ExpenseByCategory[0]
	a.TopCategory = top.Name
	a.Text = fmt.Sprintf("Spending on %s was the highest this month (%s); consider keeping it under control.",
		top.Name, top.Amount)
	return a
}
