package services

import (
	"context"
	"log/slog"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/core"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// ReportInvalidator drops cached aggregates, either those covering any of
// the given times or every aggregate of an owner.
type ReportInvalidator interface {
	Invalidate(owner int64, times ...time.Time)
	InvalidateOwner(owner int64)
}

// publish never fails the caller: the mutation is already committed.
func publish(ctx context.Context, pub EventPublisher, ev *amqp.LedgerEvent) {
	if pub == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event", "kind", ev.Kind)
		return
	}
	if err := pub.PublishEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", ev.Kind,
			"entity_id", ev.EntityID,
			"error", err)
	}
}

func transactionEvent(kind amqp.EventKind, t core.Transaction) *amqp.LedgerEvent {
	ev := amqp.NewLedgerEvent(kind, t.OwnerID, t.ID)
	ev.Type = string(t.Type)
	ev.Amount = t.Amount.String()
	ev.AccountID = t.AccountID
	ev.CategoryID = t.CategoryID
	ev.Person = t.Counterparty
	ev.Summary = t.Summary
	ev.OccurredAt = t.Time
	return ev
}

func debtEvent(kind amqp.EventKind, d core.Debt) *amqp.LedgerEvent {
	ev := amqp.NewLedgerEvent(kind, d.OwnerID, d.ID)
	ev.Type = string(d.Type)
	ev.Amount = d.Amount.String()
	ev.Person = d.Person
	ev.Summary = d.Note
	ev.OccurredAt = d.Time
	return ev
}
