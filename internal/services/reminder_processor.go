package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/core"
	"meloon/internal/storage"
)

// ReminderProcessor fires due reminders across all owners.
type ReminderProcessor struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewReminderProcessor(repo *storage.SQLiteRepository, publisher EventPublisher) *ReminderProcessor {
	return &ReminderProcessor{storage: repo, publisher: publisher}
}

// ProcessDue fires every reminder due at now and returns how many fired.
// A reminder whose event cannot be published stays due for the next run.
func (p *ReminderProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	reminders, err := p.storage.Queries().ListActiveReminders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active reminders: %w", err)
	}

	fired := 0
	for _, r := range reminders {
		due, slot, err := IsReminderDue(r, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to check reminder dueness", "reminder_id", r.ID, "error", err)
			continue
		}
		if !due {
			continue
		}

		if err := p.announce(ctx, r, slot); err != nil {
			slog.ErrorContext(ctx, "Failed to publish reminder", "reminder_id", r.ID, "error", err)
			continue
		}

		if err := p.storage.Queries().MarkReminderFired(ctx, r.ID, slot, r.Frequency == core.Once); err != nil {
			slog.ErrorContext(ctx, "Failed to record reminder firing", "reminder_id", r.ID, "error", err)
			continue
		}

		fired++
		slog.InfoContext(ctx, "Reminder fired",
			"reminder_id", r.ID,
			"owner_id", r.OwnerID,
			"event_name", r.EventName,
			"frequency", r.Frequency)
	}

	slog.InfoContext(ctx, "Reminder processing complete", "fired", fired, "total_checked", len(reminders))
	return fired, nil
}

func (p *ReminderProcessor) announce(ctx context.Context, r core.Reminder, slot time.Time) error {
	if p.publisher == nil {
		return nil
	}
	ev := amqp.NewLedgerEvent(amqp.ReminderDue, r.OwnerID, r.ID)
	ev.Summary = r.EventName
	ev.Type = string(r.Frequency)
	ev.OccurredAt = slot
	return p.publisher.PublishEvent(ctx, ev)
}
