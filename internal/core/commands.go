package core

import (
	"strings"
	"time"
)

// DefaultPageSize is used when no page size is configured.
const DefaultPageSize = 20

type (
	AccountCreate struct {
		Name           string
		Type           string
		InitialBalance Money
	}

	AccountUpdate struct {
		ID   int64
		Name *string
		Type *string
	}

	CategoryCreate struct {
		Name string
		Type TxType
		Icon string
	}

	CategoryUpdate struct {
		ID   int64
		Name *string
		Icon *string
	}

	TransactionCreate struct {
		AccountID    int64
		CategoryID   int64
		Amount       Money
		Type         TxType
		Time         time.Time // zero means now
		Summary      string
		Counterparty string
		Note         string
	}

	// TransactionUpdate carries optional field changes; nil fields are left
	// untouched. The transaction type is immutable.
	TransactionUpdate struct {
		ID           int64
		Amount       *Money
		AccountID    *int64
		CategoryID   *int64
		Time         *time.Time
		Summary      *string
		Counterparty *string
		Note         *string
	}

	TransactionFilter struct {
		Range     Window
		Type      TxType
		AccountID int64
		Page      int
	}

	DebtCreate struct {
		Type   DebtType
		Person string
		Amount Money
		Time   time.Time // zero means now
		Note   string
	}

	DebtUpdate struct {
		ID     int64
		Type   *DebtType
		Person *string
		Amount *Money
		Time   *time.Time
		Note   *string
	}

	DebtFilter struct {
		Type DebtType
		Page int
	}

	ReminderCreate struct {
		EventName string
		At        TimeOfDay
		Frequency Frequency
		Note      string
	}

	ReminderUpdate struct {
		ID        int64
		EventName *string
		At        *TimeOfDay
		Frequency *Frequency
		Note      *string
		Active    *bool
	}

	// DeleteRequest identifies the row to delete; ID is required.
	DeleteRequest struct {
		ID int64
	}

	// Page is one page of an owner-scoped listing.
	Page[T any] struct {
		Items    []T
		Total    int
		Page     int
		PageSize int
	}
)

// NormalizePage maps non-positive page numbers to the first page.
func NormalizePage(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func requireID(op string, id int64) error {
	if id <= 0 {
		return Validation(op, "id is required")
	}
	return nil
}

func (d DeleteRequest) Validate() error { return requireID("delete", d.ID) }

func (c AccountCreate) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if strings.TrimSpace(c.Type) == "" {
		return Validation("add account", "type is required")
	}
	if c.InitialBalance.Cents != 0 {
		return Validation("add account", "initial balance must be zero; record an opening transaction instead")
	}
	return validateText(c.Type)
}

func (u AccountUpdate) Validate() error {
	if err := requireID("update account", u.ID); err != nil {
		return err
	}
	if u.Name != nil {
		if err := validateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Type != nil && strings.TrimSpace(*u.Type) == "" {
		return Validation("update account", "type cannot be empty")
	}
	return nil
}

func (c CategoryCreate) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return validateText(c.Icon)
}

func (u CategoryUpdate) Validate() error {
	if err := requireID("update category", u.ID); err != nil {
		return err
	}
	if u.Name != nil {
		if err := validateName(*u.Name); err != nil {
			return err
		}
	}
	if u.Icon != nil {
		return validateText(*u.Icon)
	}
	return nil
}

func (c TransactionCreate) Validate() error {
	if c.AccountID <= 0 {
		return Validation("add transaction", "account_id is required")
	}
	if c.CategoryID <= 0 {
		return Validation("add transaction", "category_id is required")
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	return validateText(c.Summary, c.Counterparty, c.Note)
}

func (u TransactionUpdate) Validate() error {
	if err := requireID("update transaction", u.ID); err != nil {
		return err
	}
	if u.Amount != nil {
		if err := u.Amount.Validate(); err != nil {
			return err
		}
	}
	if u.AccountID != nil && *u.AccountID <= 0 {
		return Validation("update transaction", "account_id must be positive")
	}
	if u.CategoryID != nil && *u.CategoryID <= 0 {
		return Validation("update transaction", "category_id must be positive")
	}
	for _, s := range []*string{u.Summary, u.Counterparty, u.Note} {
		if s != nil {
			if err := validateText(*s); err != nil {
				return err
			}
		}
	}
	return nil
}

// Apply copies the set fields onto t.
func (u TransactionUpdate) Apply(t *Transaction) {
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.AccountID != nil {
		t.AccountID = *u.AccountID
	}
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.Time != nil {
		t.Time = u.Time.UTC().Truncate(time.Second)
	}
	if u.Summary != nil {
		t.Summary = *u.Summary
	}
	if u.Counterparty != nil {
		t.Counterparty = *u.Counterparty
	}
	if u.Note != nil {
		t.Note = *u.Note
	}
}

func (c DebtCreate) Validate() error {
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if err := validateName(c.Person); err != nil {
		return err
	}
	if err := c.Amount.Validate(); err != nil {
		return err
	}
	return validateText(c.Note)
}

func (u DebtUpdate) Validate() error {
	if err := requireID("update debt", u.ID); err != nil {
		return err
	}
	if u.Type != nil && !u.Type.Valid() {
		return ErrInvalidType
	}
	if u.Person != nil {
		if err := validateName(*u.Person); err != nil {
			return err
		}
	}
	if u.Amount != nil {
		if err := u.Amount.Validate(); err != nil {
			return err
		}
	}
	if u.Note != nil {
		return validateText(*u.Note)
	}
	return nil
}

// Apply copies the set fields onto d.
func (u DebtUpdate) Apply(d *Debt) {
	if u.Type != nil {
		d.Type = *u.Type
	}
	if u.Person != nil {
		d.Person = *u.Person
	}
	if u.Amount != nil {
		d.Amount = *u.Amount
	}
	if u.Time != nil {
		d.Time = u.Time.UTC().Truncate(time.Second)
	}
	if u.Note != nil {
		d.Note = *u.Note
	}
}

func (c ReminderCreate) Validate() error {
	if err := validateName(c.EventName); err != nil {
		return err
	}
	if !c.Frequency.Valid() {
		return Validation("add reminder", "invalid frequency %q", c.Frequency)
	}
	return validateText(c.Note)
}

func (u ReminderUpdate) Validate() error {
	if err := requireID("update reminder", u.ID); err != nil {
		return err
	}
	if u.EventName != nil {
		if err := validateName(*u.EventName); err != nil {
			return err
		}
	}
	if u.Frequency != nil && !u.Frequency.Valid() {
		return Validation("update reminder", "invalid frequency %q", *u.Frequency)
	}
	if u.Note != nil {
		return validateText(*u.Note)
	}
	return nil
}

// Apply copies the set fields onto r.
func (u ReminderUpdate) Apply(r *Reminder) {
	if u.EventName != nil {
		r.EventName = *u.EventName
	}
	if u.At != nil {
		r.At = *u.At
	}
	if u.Frequency != nil {
		r.Frequency = *u.Frequency
	}
	if u.Note != nil {
		r.Note = *u.Note
	}
	if u.Active != nil {
		r.Active = *u.Active
	}
}
