package core

import (
	"strings"
	"time"
)

const (
	Expense TxType = "EXPENSE"
	Income  TxType = "INCOME"

	Borrow DebtType = "BORROW"
	Lend   DebtType = "LEND"

	Once    Frequency = "ONCE"
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

// Upper bound on free-text fields.
const maxTextLen = 255

type (
	TxType    string
	DebtType  string
	Frequency string

	Money struct {
		Cents int64
	}

	Account struct {
		ID      int64
		OwnerID int64
		Name    string
		Type    string // free-form tag: cash, card, ...
		Balance Money
	}

	Category struct {
		ID       int64
		OwnerID  int64
		Name     string
		Type     TxType
		Icon     string
		IsSystem bool
	}

	Transaction struct {
		ID           int64
		OwnerID      int64
		AccountID    int64
		CategoryID   int64
		Amount       Money
		Type         TxType
		Time         time.Time
		Summary      string
		Counterparty string
		Note         string
	}

	// TransactionView is a transaction joined with display names.
	TransactionView struct {
		Transaction
		CategoryName string
		AccountName  string
	}

	Debt struct {
		ID      int64
		OwnerID int64
		Type    DebtType
		Person  string
		Amount  Money
		Time    time.Time
		Note    string
	}

	Reminder struct {
		ID          int64
		OwnerID     int64
		EventName   string
		At          TimeOfDay
		Frequency   Frequency
		Note        string
		Active      bool
		LastFiredAt time.Time // zero if never fired
	}

	// TimeOfDay is a wall-clock time in UTC.
	TimeOfDay struct {
		Hour   int
		Minute int
	}
)

var (
	ErrInvalidAmount = &Error{Kind: KindValidation, Msg: "invalid amount"}
	ErrInvalidType   = &Error{Kind: KindValidation, Msg: "invalid type"}
	ErrEmptyName     = &Error{Kind: KindValidation, Msg: "empty name"}
	ErrTextTooLong   = &Error{Kind: KindValidation, Msg: "text too long (max 255 characters)"}
)

// ParseTxType normalises s to EXPENSE or INCOME.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t TxType) Valid() bool { return t == Expense || t == Income }

// Delta is the signed contribution of amount to an account balance.
func (t TxType) Delta(amount Money) int64 {
	if t == Income {
		return amount.Cents
	}
	return -amount.Cents
}

// ParseDebtType normalises s to BORROW or LEND.
func ParseDebtType(s string) (DebtType, error) {
	t := DebtType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

func (t DebtType) Valid() bool { return t == Borrow || t == Lend }

// ParseFrequency normalises s to one of the reminder frequencies.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", &Error{Kind: KindValidation, Msg: "invalid frequency " + s}
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	switch f {
	case Once, Daily, Weekly, Monthly:
		return true
	}
	return false
}

// ParseTimeOfDay parses "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return TimeOfDay{}, Validation("parse reminder_time", "%q is not HH:MM", s)
}

func (t TimeOfDay) String() string {
	return time.Date(2000, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("15:04")
}

// On returns the instant of t on the calendar day of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	day = day.UTC()
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}

func validateText(fields ...string) error {
	for _, f := range fields {
		if len(f) > maxTextLen {
			return ErrTextTooLong
		}
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return validateText(name)
}
