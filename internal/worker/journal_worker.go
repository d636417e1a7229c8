package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/cache"
	"meloon/internal/log"
	"meloon/internal/sheets"
)

const (
	seenCapacity = 10_000
	seenTTL      = 24 * time.Hour
)

// JournalWorker mirrors ledger events into a journal sink, one row per event.
// Event ids already written are remembered so broker redeliveries are not
// appended twice.
type JournalWorker struct {
	sink sheets.JournalWriter
	seen *cache.LRUCache[string]
	now  func() time.Time
}

func NewJournalWorker(sink sheets.JournalWriter) *JournalWorker {
	return &JournalWorker{
		sink: sink,
		seen: cache.NewLRUCache[string](seenCapacity, seenTTL),
		now:  time.Now,
	}
}

// Seen exposes the dedup cache so the caller can register it for sweeping.
func (w *JournalWorker) Seen() *cache.LRUCache[string] { return w.seen }

// RowFromEvent flattens an event into a journal row.
func RowFromEvent(ev *amqp.LedgerEvent, recordedAt time.Time) sheets.JournalRow {
	return sheets.JournalRow{
		EventID:    ev.ID,
		Kind:       string(ev.Kind),
		OwnerID:    ev.OwnerID,
		EntityID:   ev.EntityID,
		Type:       ev.Type,
		Amount:     ev.Amount,
		AccountID:  ev.AccountID,
		CategoryID: ev.CategoryID,
		Person:     ev.Person,
		Summary:    ev.Summary,
		OccurredAt: ev.OccurredAt,
		RecordedAt: recordedAt.UTC(),
	}
}

// HandleEvent processes a single ledger event from AMQP. A returned error
// makes the consumer requeue the delivery.
func (w *JournalWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if _, dup := w.seen.Get(ev.ID); dup {
		slog.DebugContext(ctx, "Skipping duplicate ledger event",
			log.FieldComponent, log.ComponentWorker,
			log.FieldEventID, ev.ID)
		return nil
	}

	ref, err := w.sink.Append(ctx, RowFromEvent(ev, w.now()))
	if err != nil {
		return fmt.Errorf("append journal row: %w", err)
	}
	w.seen.Set(ev.ID, ref)

	slog.InfoContext(ctx, "Mirrored ledger event",
		log.FieldComponent, log.ComponentWorker,
		log.FieldEventID, ev.ID,
		log.FieldEventKind, ev.Kind,
		log.FieldOwnerID, ev.OwnerID,
		"entity_id", ev.EntityID,
		"row_ref", ref)
	return nil
}

// Prime loads event ids already present in the sink, so a restart does not
// duplicate rows for redelivered events. Sinks that cannot be read back are
// skipped.
func (w *JournalWorker) Prime(ctx context.Context) (int, error) {
	reader, ok := w.sink.(sheets.JournalReader)
	if !ok {
		return 0, nil
	}
	rows, err := reader.Rows(ctx)
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}
	for _, r := range rows {
		w.seen.Set(r.EventID, "")
	}
	slog.InfoContext(ctx, "Journal dedup cache primed",
		log.FieldComponent, log.ComponentWorker,
		"rows", len(rows))
	return len(rows), nil
}
