package services

import (
	"context"
	"fmt"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/core"
	"meloon/internal/log"
	"meloon/internal/storage"
)

// DebtService keeps borrow/lend records. Debts never touch account balances.
type DebtService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
	pageSize  int
	now       func() time.Time
}

func NewDebtService(repo *storage.SQLiteRepository, publisher EventPublisher, pageSize int) *DebtService {
	if pageSize <= 0 {
		pageSize = core.DefaultPageSize
	}
	return &DebtService{storage: repo, publisher: publisher, pageSize: pageSize, now: time.Now}
}

func (s *DebtService) Add(ctx context.Context, owner int64, cmd core.DebtCreate) (core.Debt, error) {
	if err := cmd.Validate(); err != nil {
		return core.Debt{}, err
	}
	d := core.Debt{
		OwnerID: owner,
		Type:    cmd.Type,
		Person:  cmd.Person,
		Amount:  cmd.Amount,
		Time:    cmd.Time,
		Note:    cmd.Note,
	}
	if d.Time.IsZero() {
		d.Time = s.now()
	}
	d.Time = d.Time.UTC().Truncate(time.Second)

	d, err := s.storage.Queries().CreateDebt(ctx, d)
	if err != nil {
		return core.Debt{}, fmt.Errorf("add debt: %w", err)
	}
	s.committed(ctx, log.OpCreate, amqp.DebtCreated, d)
	return d, nil
}

// Update changes only the fields set on cmd.
func (s *DebtService) Update(ctx context.Context, owner int64, cmd core.DebtUpdate) (core.Debt, error) {
	if err := cmd.Validate(); err != nil {
		return core.Debt{}, err
	}

	var d core.Debt
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if d, err = q.GetDebt(ctx, owner, cmd.ID); err != nil {
			return err
		}
		cmd.Apply(&d)
		return q.UpdateDebt(ctx, d)
	})
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	s.committed(ctx, log.OpUpdate, amqp.DebtUpdated, d)
	return d, nil
}

func (s *DebtService) Delete(ctx context.Context, owner int64, req core.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var d core.Debt
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if d, err = q.GetDebt(ctx, owner, req.ID); err != nil {
			return err
		}
		return q.DeleteDebt(ctx, owner, req.ID)
	})
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	s.committed(ctx, log.OpDelete, amqp.DebtDeleted, d)
	return nil
}

func (s *DebtService) List(ctx context.Context, owner int64, f core.DebtFilter) (core.Page[core.Debt], error) {
	if f.Type != "" && !f.Type.Valid() {
		return core.Page[core.Debt]{}, core.ErrInvalidType
	}
	return s.storage.Queries().ListDebts(ctx, owner, f, s.pageSize)
}

// Summary nets the owner's debts: positive NetDebt means others owe the owner.
func (s *DebtService) Summary(ctx context.Context, owner int64) (core.DebtSummary, error) {
	borrow, lend, err := s.storage.Queries().DebtTotals(ctx, owner)
	if err != nil {
		return core.DebtSummary{}, err
	}
	return core.DebtSummary{
		TotalBorrowIn: borrow,
		TotalLendOut:  lend,
		NetDebt:       core.Cents(lend.Cents - borrow.Cents),
	}, nil
}

func (s *DebtService) committed(ctx context.Context, op string, kind amqp.EventKind, d core.Debt) {
	log.FromContext(ctx).WithComponent(log.ComponentDebt).InfoContext(ctx, "Debt mutation committed",
		log.FieldOperation, op,
		log.FieldOwnerID, d.OwnerID,
		log.FieldDebtID, d.ID,
		log.FieldAmountCents, d.Amount.Cents,
		log.FieldTxType, d.Type)
	publish(ctx, s.publisher, debtEvent(kind, d))
}
