package sheets

import (
	"fmt"
	"testing"
	"time"
)

func TestParseRowRoundTrip(t *testing.T) {
	occurred := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	in := JournalRow{
		EventID: "abc", Kind: "transaction.created", OwnerID: 7, EntityID: 42,
		Type: "EXPENSE", Amount: "12.50", AccountID: 3, CategoryID: 9,
		Summary: "lunch", OccurredAt: occurred, RecordedAt: occurred.Add(time.Second),
	}

	vals := in.Values()
	if len(vals) != len(Header) {
		t.Fatalf("Values() has %d columns, header has %d", len(vals), len(Header))
	}
	cols := make([]string, len(vals))
	for i, v := range vals {
		cols[i] = fmt.Sprint(v)
	}

	out, err := ParseRow(cols)
	if err != nil {
		t.Fatalf("ParseRow: %v", err)
	}
	if !out.OccurredAt.Equal(in.OccurredAt) || !out.RecordedAt.Equal(in.RecordedAt) {
		t.Fatalf("times = %v/%v, want %v/%v", out.OccurredAt, out.RecordedAt, in.OccurredAt, in.RecordedAt)
	}
	out.OccurredAt, out.RecordedAt = in.OccurredAt, in.RecordedAt
	if out != in {
		t.Fatalf("ParseRow() = %+v, want %+v", out, in)
	}
}

func TestParseRowErrors(t *testing.T) {
	tests := []struct {
		name string
		cols []string
	}{
		{"too short", []string{"id"}},
		{"missing id", []string{"", "debt.created"}},
		{"missing kind", []string{"id", " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRow(tt.cols); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseRowToleratesShortTrailingColumns(t *testing.T) {
	r, err := ParseRow([]string{"id", "reminder.due", "1", "5"})
	if err != nil {
		t.Fatalf("ParseRow: %v", err)
	}
	if r.EntityID != 5 || !r.OccurredAt.IsZero() {
		t.Fatalf("unexpected row: %+v", r)
	}
}
