package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/sheets"
	"meloon/internal/sheets/memory"
)

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, sheets.JournalRow) (string, error) {
	f.calls++
	return "", errors.New("sheets unavailable")
}

func txEvent(id string) *amqp.LedgerEvent {
	ev := amqp.NewLedgerEvent(amqp.TransactionCreated, 1, 42)
	ev.ID = id
	ev.Type = "EXPENSE"
	ev.Amount = "12.30"
	ev.AccountID = 3
	ev.CategoryID = 5
	ev.OccurredAt = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	return ev
}

func TestHandleEventAppendsRow(t *testing.T) {
	sink := memory.New()
	w := NewJournalWorker(sink)
	recorded := time.Date(2024, 3, 10, 9, 0, 5, 0, time.UTC)
	w.now = func() time.Time { return recorded }

	if err := w.HandleEvent(context.Background(), txEvent("e1")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	rows, _ := sink.Rows(context.Background())
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.EventID != "e1" || r.Kind != "transaction.created" || r.EntityID != 42 || r.Amount != "12.30" {
		t.Fatalf("unexpected row: %+v", r)
	}
	if !r.RecordedAt.Equal(recorded) {
		t.Fatalf("RecordedAt = %v, want %v", r.RecordedAt, recorded)
	}
}

func TestHandleEventSkipsRedelivery(t *testing.T) {
	sink := memory.New()
	w := NewJournalWorker(sink)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := w.HandleEvent(ctx, txEvent("same")); err != nil {
			t.Fatalf("HandleEvent: %v", err)
		}
	}
	if err := w.HandleEvent(ctx, txEvent("other")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if sink.Len() != 2 {
		t.Fatalf("rows = %d, want 2", sink.Len())
	}
}

func TestHandleEventFailureIsRetryable(t *testing.T) {
	sink := &failingSink{}
	w := NewJournalWorker(sink)
	ctx := context.Background()

	if err := w.HandleEvent(ctx, txEvent("e1")); err == nil {
		t.Fatal("expected error")
	}
	if err := w.HandleEvent(ctx, txEvent("e1")); err == nil {
		t.Fatal("failed events must not be marked as seen")
	}
	if sink.calls != 2 {
		t.Fatalf("calls = %d, want 2", sink.calls)
	}
}

func TestPrimeSkipsAlreadyMirroredEvents(t *testing.T) {
	sink := memory.New()
	ctx := context.Background()
	sink.Append(ctx, sheets.JournalRow{EventID: "old", Kind: "debt.created"})

	w := NewJournalWorker(sink)
	n, err := w.Prime(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Prime() = %d, %v; want 1, nil", n, err)
	}
	if err := w.HandleEvent(ctx, txEvent("old")); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if sink.Len() != 1 {
		t.Fatalf("rows = %d, want 1", sink.Len())
	}

	if n, err := NewJournalWorker(&failingSink{}).Prime(ctx); n != 0 || err != nil {
		t.Fatalf("write-only sink Prime() = %d, %v", n, err)
	}
}
