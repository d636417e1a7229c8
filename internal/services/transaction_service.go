package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"meloon/internal/amqp"
	"meloon/internal/core"
	"meloon/internal/log"
	"meloon/internal/storage"
)

type TransactionOptions struct {
	// StrictCategoryType rejects a transaction whose type differs from its
	// category's type. When false the mismatch is only logged.
	StrictCategoryType bool
	PageSize           int
	Now                func() time.Time
}

// TransactionService runs the add/update/delete lifecycle of a transaction
// together with its balance contribution, each in one write transaction.
type TransactionService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
	reports   ReportInvalidator
	mutator   BalanceMutator
	strict    bool
	pageSize  int
	now       func() time.Time
}

func NewTransactionService(repo *storage.SQLiteRepository, publisher EventPublisher, reports ReportInvalidator, opts TransactionOptions) *TransactionService {
	if opts.PageSize <= 0 {
		opts.PageSize = core.DefaultPageSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &TransactionService{
		storage:   repo,
		publisher: publisher,
		reports:   reports,
		strict:    opts.StrictCategoryType,
		pageSize:  opts.PageSize,
		now:       opts.Now,
	}
}

func (s *TransactionService) Add(ctx context.Context, owner int64, cmd core.TransactionCreate) (core.Transaction, error) {
	if err := cmd.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		OwnerID:      owner,
		AccountID:    cmd.AccountID,
		CategoryID:   cmd.CategoryID,
		Amount:       cmd.Amount,
		Type:         cmd.Type,
		Time:         cmd.Time,
		Summary:      cmd.Summary,
		Counterparty: cmd.Counterparty,
		Note:         cmd.Note,
	}
	if t.Time.IsZero() {
		t.Time = s.now()
	}
	t.Time = t.Time.UTC().Truncate(time.Second)

	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := q.GetAccount(ctx, owner, t.AccountID); err != nil {
			return err
		}
		if err := s.checkCategory(ctx, q, owner, t.CategoryID, t.Type); err != nil {
			return err
		}
		inserted, err := q.InsertTransaction(ctx, t)
		if err != nil {
			return err
		}
		t = inserted
		_, err = s.mutator.Apply(ctx, q, owner, t.AccountID, t.Amount, t.Type, false)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}

	s.committed(ctx, log.OpCreate, amqp.TransactionCreated, t, t.Time)
	return t, nil
}

// Update reverses the stored contribution, applies the field changes and
// reapplies the new contribution. The old and new accounts may differ.
func (s *TransactionService) Update(ctx context.Context, owner int64, cmd core.TransactionUpdate) (core.Transaction, error) {
	if err := cmd.Validate(); err != nil {
		return core.Transaction{}, err
	}

	var before, after core.Transaction
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if before, err = q.GetTransaction(ctx, owner, cmd.ID); err != nil {
			return err
		}
		if _, err := s.mutator.Apply(ctx, q, owner, before.AccountID, before.Amount, before.Type, true); err != nil {
			return err
		}

		after = before
		cmd.Apply(&after)

		if after.AccountID != before.AccountID {
			if _, err := q.GetAccount(ctx, owner, after.AccountID); err != nil {
				return err
			}
		}
		if after.CategoryID != before.CategoryID {
			if err := s.checkCategory(ctx, q, owner, after.CategoryID, after.Type); err != nil {
				return err
			}
		}
		if err := q.UpdateTransaction(ctx, after); err != nil {
			return err
		}
		_, err = s.mutator.Apply(ctx, q, owner, after.AccountID, after.Amount, after.Type, false)
		return err
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	s.committed(ctx, log.OpUpdate, amqp.TransactionUpdated, after, before.Time, after.Time)
	return after, nil
}

func (s *TransactionService) Delete(ctx context.Context, owner int64, req core.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var t core.Transaction
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if t, err = q.GetTransaction(ctx, owner, req.ID); err != nil {
			return err
		}
		if _, err := s.mutator.Apply(ctx, q, owner, t.AccountID, t.Amount, t.Type, true); err != nil {
			return err
		}
		return q.DeleteTransaction(ctx, owner, t.ID)
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.committed(ctx, log.OpDelete, amqp.TransactionDeleted, t, t.Time)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, owner, id int64) (core.Transaction, error) {
	return s.storage.Queries().GetTransaction(ctx, owner, id)
}

func (s *TransactionService) List(ctx context.Context, owner int64, f core.TransactionFilter) (core.Page[core.TransactionView], error) {
	if f.Type != "" && !f.Type.Valid() {
		return core.Page[core.TransactionView]{}, core.ErrInvalidType
	}
	return s.storage.Queries().ListTransactions(ctx, owner, f, s.pageSize)
}

func (s *TransactionService) checkCategory(ctx context.Context, q *storage.Queries, owner, categoryID int64, typ core.TxType) error {
	c, err := q.GetCategory(ctx, owner, categoryID)
	if err != nil {
		return err
	}
	if c.Type == typ {
		return nil
	}
	if s.strict {
		return core.Validation("check category", "category %q is %s but the transaction is %s", c.Name, c.Type, typ)
	}
	slog.WarnContext(ctx, "Transaction type does not match category type",
		log.FieldOwnerID, owner,
		log.FieldCategoryID, categoryID,
		"category_type", c.Type,
		log.FieldTxType, typ)
	return nil
}

// committed runs the post-commit side effects; none of them can fail the call.
func (s *TransactionService) committed(ctx context.Context, op string, kind amqp.EventKind, t core.Transaction, touched ...time.Time) {
	if s.reports != nil {
		s.reports.Invalidate(t.OwnerID, touched...)
	}
	log.NewStructuredLogger(log.FromContext(ctx)).LogMutation(ctx, op, t.OwnerID,
		log.NewFields().WithTransaction(t.ID, t.AccountID, t.Amount.Cents, string(t.Type)))
	publish(ctx, s.publisher, transactionEvent(kind, t))
}
