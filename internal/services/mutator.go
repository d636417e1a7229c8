package services

import (
	"context"

	"meloon/internal/core"
	"meloon/internal/storage"
)

// BalanceMutator is the only code path that changes an account's cached
// balance. It must run on Queries bound to the caller's write transaction.
type BalanceMutator struct{}

// Apply adds the signed contribution of (amount, typ) to the account, or
// removes it when reverse is set, and returns the new balance.
func (BalanceMutator) Apply(ctx context.Context, q *storage.Queries, owner, accountID int64, amount core.Money, typ core.TxType, reverse bool) (core.Money, error) {
	if err := amount.Validate(); err != nil {
		return core.Money{}, err
	}
	if !typ.Valid() {
		return core.Money{}, core.ErrInvalidType
	}

	delta := typ.Delta(amount)
	if reverse {
		delta = -delta
	}

	balance, err := q.AdjustBalance(ctx, owner, accountID, delta)
	if err != nil {
		return core.Money{}, err
	}
	if !balance.InBounds() {
		return core.Money{}, core.Validation("apply balance", "balance of account %d would leave the storable range", accountID)
	}
	return balance, nil
}
