package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"meloon/internal/cache"
	"meloon/internal/core"
)

// RecentCount is how many transactions the dashboard shows.
const RecentCount = 5

// Store is the read side of the ledger; *storage.Queries implements it.
type Store interface {
	SumBalances(ctx context.Context, owner int64) (core.Money, error)
	RecentTransactions(ctx context.Context, owner int64, n int) ([]core.TransactionView, error)
	WindowEntries(ctx context.Context, owner int64, w core.Window) ([]core.Entry, error)
}

// Engine serves aggregates. Reports are cached per owner and period until
// a mutation invalidates them or the TTL passes.
type Engine struct {
	store   Store
	reports *cache.LRUCache[core.Report]
	now     func() time.Time
}

func NewEngine(store Store, reports *cache.LRUCache[core.Report]) *Engine {
	return &Engine{store: store, reports: reports, now: time.Now}
}

func cacheKey(owner int64, p core.Period) string {
	return fmt.Sprintf("%d:%s:%s", owner, p.Type, p.Label())
}

// Dashboard summarizes the month containing month.Start; a zero window
// means the current UTC month.
func (e *Engine) Dashboard(ctx context.Context, owner int64, month core.Window) (core.DashboardSummary, error) {
	if month.Start.IsZero() {
		month = core.CurrentMonth(e.now())
	}
	d := core.DashboardSummary{Month: month}

	var entries []core.Entry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		d.TotalBalance, err = e.store.SumBalances(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = e.store.WindowEntries(gctx, owner, month)
		return err
	})
	g.Go(func() error {
		var err error
		d.Recent, err = e.store.RecentTransactions(gctx, owner, RecentCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("dashboard: %w", err)
	}

	r := Summarize(core.Period{Type: core.PeriodMonth, Window: month}, entries)
	d.MonthIncome, d.MonthExpense = r.IncomeTotal, r.ExpenseTotal
	if d.Recent == nil {
		d.Recent = []core.TransactionView{}
	}
	return d, nil
}

func (e *Engine) Report(ctx context.Context, owner int64, p core.Period) (core.Report, error) {
	key := cacheKey(owner, p)
	if e.reports != nil {
		if r, ok := e.reports.Get(key); ok {
			slog.DebugContext(ctx, "Report cache hit", "key", key)
			return r, nil
		}
	}

	entries, err := e.store.WindowEntries(ctx, owner, p.Window)
	if err != nil {
		return core.Report{}, fmt.Errorf("report %s: %w", p.Label(), err)
	}
	r := Summarize(p, entries)

	if e.reports != nil {
		e.reports.Set(key, r)
	}
	return r, nil
}

// Advise scores the month containing month.Start; a zero window means the
// current UTC month.
func (e *Engine) Advise(ctx context.Context, owner int64, month core.Window) (core.Advice, error) {
	if month.Start.IsZero() {
		month = core.CurrentMonth(e.now())
	}
	r, err := e.Report(ctx, owner, core.Period{Type: core.PeriodMonth, Window: month})
	if err != nil {
		return core.Advice{}, err
	}
	return Advise(r), nil
}

// Invalidate drops the cached month and year reports containing each time.
func (e *Engine) Invalidate(owner int64, times ...time.Time) {
	if e.reports == nil {
		return
	}
	for _, t := range times {
		t = t.UTC()
		e.reports.Delete(cacheKey(owner, core.Period{Type: core.PeriodMonth, Window: core.MonthWindow(t.Year(), t.Month())}))
		e.reports.Delete(cacheKey(owner, core.Period{Type: core.PeriodYear, Window: core.YearWindow(t.Year())}))
	}
}

// InvalidateOwner drops every cached report of owner, used after bulk imports.
func (e *Engine) InvalidateOwner(owner int64) {
	if e.reports == nil {
		return
	}
	prefix := fmt.Sprintf("%d:", owner)
	e.reports.DeleteMatching(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}
