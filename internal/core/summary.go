package core

import "time"

// CategoryAmount is an amount aggregated by category name.
type CategoryAmount struct {
	Name    string
	Amount  Money
	Percent float64 // share of the window's expense total, 0 when the total is 0
}

// DashboardSummary is the landing view for one owner and month.
type DashboardSummary struct {
	Month        Window
	TotalBalance Money
	MonthIncome  Money
	MonthExpense Money
	Recent       []TransactionView
}

// Report aggregates a month or a year.
type Report struct {
	Period            Period
	IncomeTotal       Money
	ExpenseTotal      Money
	ExpenseByCategory []CategoryAmount
	IncomeTrend       []Money // one entry per calendar month of the period
}

// Advice is the deterministic spending heuristic for a month.
type Advice struct {
	Text        string
	Score       int
	TopCategory string // empty when there were no expenses
}

// DebtSummary nets borrow and lend events.
type DebtSummary struct {
	TotalBorrowIn Money
	TotalLendOut  Money
	NetDebt       Money // lend - borrow; positive means others owe the owner
}

// Entry is the minimal projection the aggregation engine scans.
type Entry struct {
	Type         TxType
	Amount       Money
	CategoryName string
	Time         time.Time
}
