package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Header is the first row of a journal sheet.
var Header = []string{
	"event_id", "kind", "owner_id", "entity_id", "type", "amount",
	"account_id", "category_id", "person", "summary", "occurred_at", "recorded_at",
}

// JournalRow is one mirrored ledger event.
type JournalRow struct {
	EventID    string
	Kind       string
	OwnerID    int64
	EntityID   int64
	Type       string
	Amount     string
	AccountID  int64
	CategoryID int64
	Person     string
	Summary    string
	OccurredAt time.Time
	RecordedAt time.Time
}

var ErrMissingEventID = errors.New("journal row: missing event id")

func (r JournalRow) Validate() error {
	if strings.TrimSpace(r.EventID) == "" {
		return ErrMissingEventID
	}
	if strings.TrimSpace(r.Kind) == "" {
		return fmt.Errorf("journal row %s: missing kind", r.EventID)
	}
	return nil
}

// Values renders the row in Header order.
func (r JournalRow) Values() []any {
	return []any{
		r.EventID, r.Kind, r.OwnerID, r.EntityID, r.Type, r.Amount,
		r.AccountID, r.CategoryID, r.Person, r.Summary,
		formatTime(r.OccurredAt), formatTime(r.RecordedAt),
	}
}

// ParseRow is the inverse of Values for cells read back as strings.
func ParseRow(cols []string) (JournalRow, error) {
	if len(cols) < 2 {
		return JournalRow{}, fmt.Errorf("journal row: %d columns", len(cols))
	}
	get := func(i int) string {
		if i >= len(cols) {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}
	num := func(i int) int64 {
		n, _ := strconv.ParseInt(get(i), 10, 64)
		return n
	}
	r := JournalRow{
		EventID:    get(0),
		Kind:       get(1),
		OwnerID:    num(2),
		EntityID:   num(3),
		Type:       get(4),
		Amount:     get(5),
		AccountID:  num(6),
		CategoryID: num(7),
		Person:     get(8),
		Summary:    get(9),
		OccurredAt: parseTime(get(10)),
		RecordedAt: parseTime(get(11)),
	}
	return r, r.Validate()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Ports for outbound adapters.
type (
	JournalWriter interface {
		Append(ctx context.Context, r JournalRow) (rowRef string, err error)
	}

	// JournalReader lists rows already mirrored, oldest first.
	JournalReader interface {
		Rows(ctx context.Context) ([]JournalRow, error)
	}

	Journal interface {
		JournalWriter
		JournalReader
	}
)
