package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind names what happened to which entity.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionUpdated EventKind = "transaction.updated"
	TransactionDeleted EventKind = "transaction.deleted"
	DebtCreated        EventKind = "debt.created"
	DebtUpdated        EventKind = "debt.updated"
	DebtDeleted        EventKind = "debt.deleted"
	ReminderDue        EventKind = "reminder.due"
)

// LedgerEvent is published after a committed mutation or a fired reminder.
// It carries the row as it looked after the change (before it, for deletes)
// so consumers never need to read the database.
type LedgerEvent struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	OwnerID    int64     `json:"owner_id"`
	EntityID   int64     `json:"entity_id"`
	Type       string    `json:"type,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	AccountID  int64     `json:"account_id,omitempty"`
	CategoryID int64     `json:"category_id,omitempty"`
	Person     string    `json:"person,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps a fresh event id and the publish time.
func NewLedgerEvent(kind EventKind, owner, entityID int64) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		OwnerID:   owner,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
