package http

import (
	"meloon/internal/core"
)

// Wire shapes. Field names are part of the public API.

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Language string `json:"language"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionDTO struct {
	UserID   int64  `json:"user_id"`
	Nickname string `json:"nickname"`
	Token    string `json:"token"`
}

type accountDTO struct {
	AccountID int64      `json:"account_id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Balance   core.Money `json:"balance"`
}

type accountAddRequest struct {
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	InitialBalance core.Money `json:"initial_balance"`
}

type accountUpdateRequest struct {
	AccountID int64       `json:"account_id"`
	Name      *string     `json:"name"`
	Type      *string     `json:"type"`
	Balance   *core.Money `json:"balance"`
}

type accountDeleteRequest struct {
	AccountID int64 `json:"account_id"`
}

type categoryDTO struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Icon       string `json:"icon"`
	IsSystem   bool   `json:"is_system"`
}

type categoryAddRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

type categoryUpdateRequest struct {
	CategoryID int64   `json:"category_id"`
	Name       *string `json:"name"`
	Icon       *string `json:"icon"`
}

type categoryDeleteRequest struct {
	CategoryID int64 `json:"category_id"`
}

type transactionDTO struct {
	TransactionID   int64      `json:"transaction_id"`
	Amount          core.Money `json:"amount"`
	Type            string     `json:"type"`
	CategoryID      int64      `json:"category_id"`
	AccountID       int64      `json:"account_id"`
	CategoryName    string     `json:"category_name,omitempty"`
	AccountName     string     `json:"account_name,omitempty"`
	TransactionTime string     `json:"transaction_time"`
	Summary         string     `json:"summary"`
	TargetPerson    string     `json:"target_person"`
	Note            string     `json:"note"`
}

type transactionAddRequest struct {
	Amount          *core.Money `json:"amount"`
	Type            string      `json:"type"`
	CategoryID      int64       `json:"category_id"`
	AccountID       int64       `json:"account_id"`
	TransactionTime *string     `json:"transaction_time"`
	Summary         string      `json:"summary"`
	TargetPerson    string      `json:"target_person"`
	Note            string      `json:"note"`
}

type transactionUpdateRequest struct {
	TransactionID   int64       `json:"transaction_id"`
	Type            *string     `json:"type"`
	Amount          *core.Money `json:"amount"`
	CategoryID      *int64      `json:"category_id"`
	AccountID       *int64      `json:"account_id"`
	TransactionTime *string     `json:"transaction_time"`
	Summary         *string     `json:"summary"`
	TargetPerson    *string     `json:"target_person"`
	Note            *string     `json:"note"`
}

type transactionDeleteRequest struct {
	TransactionID int64 `json:"transaction_id"`
}

type debtDTO struct {
	DebtID     int64      `json:"debt_id"`
	Type       string     `json:"type"`
	PersonName string     `json:"person_name"`
	Amount     core.Money `json:"amount"`
	ActionTime string     `json:"action_time"`
	Note       string     `json:"note"`
}

type debtAddRequest struct {
	Type       string      `json:"type"`
	PersonName string      `json:"person_name"`
	Amount     *core.Money `json:"amount"`
	ActionTime *string     `json:"action_time"`
	Note       string      `json:"note"`
}

type debtUpdateRequest struct {
	DebtID     int64       `json:"debt_id"`
	Type       *string     `json:"type"`
	PersonName *string     `json:"person_name"`
	Amount     *core.Money `json:"amount"`
	ActionTime *string     `json:"action_time"`
	Note       *string     `json:"note"`
}

type debtDeleteRequest struct {
	DebtID int64 `json:"debt_id"`
}

type debtSummaryDTO struct {
	TotalBorrowIn core.Money `json:"total_borrow_in"`
	TotalLendOut  core.Money `json:"total_lend_out"`
	NetDebt       core.Money `json:"net_debt"`
}

type reminderDTO struct {
	ReminderID   int64  `json:"reminder_id"`
	EventName    string `json:"event_name"`
	ReminderTime string `json:"reminder_time"`
	Frequency    string `json:"frequency"`
	IsActive     bool   `json:"is_active"`
	Note         string `json:"note"`
	LastFiredAt  string `json:"last_fired_at,omitempty"`
}

type reminderAddRequest struct {
	EventName    string `json:"event_name"`
	ReminderTime string `json:"reminder_time"`
	Frequency    string `json:"frequency"`
	Note         string `json:"note"`
}

type reminderUpdateRequest struct {
	ReminderID   int64   `json:"reminder_id"`
	EventName    *string `json:"event_name"`
	ReminderTime *string `json:"reminder_time"`
	Frequency    *string `json:"frequency"`
	Note         *string `json:"note"`
	IsActive     *bool   `json:"is_active"`
}

type reminderDeleteRequest struct {
	ReminderID int64 `json:"reminder_id"`
}

type dashboardDTO struct {
	Month              string           `json:"month"`
	TotalBalance       core.Money       `json:"total_balance"`
	MonthIncome        core.Money       `json:"month_income"`
	MonthExpense       core.Money       `json:"month_expense"`
	RecentTransactions []transactionDTO `json:"recent_transactions"`
}

type categoryAmountDTO struct {
	Category string     `json:"category"`
	Amount   core.Money `json:"amount"`
	Percent  float64    `json:"percent"`
}

type reportDTO struct {
	PeriodType        string              `json:"period_type"`
	Date              string              `json:"date"`
	IncomeTotal       core.Money          `json:"income_total"`
	ExpenseTotal      core.Money          `json:"expense_total"`
	ExpenseByCategory []categoryAmountDTO `json:"expense_by_category"`
	IncomeTrend       []core.Money        `json:"income_trend"`
}

type adviceRequest struct {
	Period string `json:"period"`
}

type adviceDTO struct {
	AdviceText  string `json:"advice_text"`
	Score       int    `json:"score"`
	TopCategory string `json:"top_category,omitempty"`
}

func toAccountDTO(a core.Account) accountDTO {
	return accountDTO{AccountID: a.ID, Name: a.Name, Type: a.Type, Balance: a.Balance}
}

func toCategoryDTO(c core.Category) categoryDTO {
	return categoryDTO{CategoryID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon, IsSystem: c.IsSystem}
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		TransactionID:   t.ID,
		Amount:          t.Amount,
		Type:            string(t.Type),
		CategoryID:      t.CategoryID,
		AccountID:       t.AccountID,
		TransactionTime: t.Time.UTC().Format(core.TimeLayout),
		Summary:         t.Summary,
		TargetPerson:    t.Counterparty,
		Note:            t.Note,
	}
}

func toTransactionViewDTO(v core.TransactionView) transactionDTO {
	d := toTransactionDTO(v.Transaction)
	d.CategoryName = v.CategoryName
	d.AccountName = v.AccountName
	return d
}

func toDebtDTO(d core.Debt) debtDTO {
	return debtDTO{
		DebtID:     d.ID,
		Type:       string(d.Type),
		PersonName: d.Person,
		Amount:     d.Amount,
		ActionTime: d.Time.UTC().Format(core.TimeLayout),
		Note:       d.Note,
	}
}

func toReminderDTO(r core.Reminder) reminderDTO {
	d := reminderDTO{
		ReminderID:   r.ID,
		EventName:    r.EventName,
		ReminderTime: r.At.String(),
		Frequency:    string(r.Frequency),
		IsActive:     r.Active,
		Note:         r.Note,
	}
	if !r.LastFiredAt.IsZero() {
		d.LastFiredAt = r.LastFiredAt.UTC().Format(core.TimeLayout)
	}
	return d
}

func toReportDTO(r core.Report) reportDTO {
	d := reportDTO{
		PeriodType:        string(r.Period.Type),
		Date:              r.Period.Label(),
		IncomeTotal:       r.IncomeTotal,
		ExpenseTotal:      r.ExpenseTotal,
		ExpenseByCategory: make([]categoryAmountDTO, 0, len(r.ExpenseByCategory)),
		IncomeTrend:       r.IncomeTrend,
	}
	for _, c := range r.ExpenseByCategory {
		d.ExpenseByCategory = append(d.ExpenseByCategory, categoryAmountDTO{Category: c.Name, Amount: c.Amount, Percent: c.Percent})
	}
	if d.IncomeTrend == nil {
		d.IncomeTrend = []core.Money{}
	}
	return d
}
