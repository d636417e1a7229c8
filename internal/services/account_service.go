package services

import (
	"context"
	"fmt"

	"meloon/internal/core"
	"meloon/internal/storage"
)

// AccountService manages account metadata. Balances are only ever moved
// by BalanceMutator through TransactionService.
type AccountService struct {
	storage *storage.SQLiteRepository
}

func NewAccountService(repo *storage.SQLiteRepository) *AccountService {
	return &AccountService{storage: repo}
}

func (s *AccountService) Add(ctx context.Context, owner int64, cmd core.AccountCreate) (core.Account, error) {
	if err := cmd.Validate(); err != nil {
		return core.Account{}, err
	}
	a, err := s.storage.Queries().CreateAccount(ctx, owner, cmd.Name, cmd.Type)
	if err != nil {
		return core.Account{}, fmt.Errorf("add account: %w", err)
	}
	return a, nil
}

func (s *AccountService) Update(ctx context.Context, owner int64, cmd core.AccountUpdate) (core.Account, error) {
	if err := cmd.Validate(); err != nil {
		return core.Account{}, err
	}
	var a core.Account
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if a, err = q.GetAccount(ctx, owner, cmd.ID); err != nil {
			return err
		}
		if cmd.Name != nil {
			a.Name = *cmd.Name
		}
		if cmd.Type != nil {
			a.Type = *cmd.Type
		}
		return q.UpdateAccountMeta(ctx, a)
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	return a, nil
}

// Delete fails with Conflict while any transaction references the account.
func (s *AccountService) Delete(ctx context.Context, owner int64, req core.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.storage.WithTx(ctx, func(q *storage.Queries) error {
		return q.DeleteAccount(ctx, owner, req.ID)
	})
}

func (s *AccountService) Get(ctx context.Context, owner, id int64) (core.Account, error) {
	return s.storage.Queries().GetAccount(ctx, owner, id)
}

func (s *AccountService) List(ctx context.Context, owner int64) ([]core.Account, error) {
	return s.storage.Queries().ListAccounts(ctx, owner)
}

// Drift is an account whose cached balance disagrees with its transactions.
type Drift struct {
	Account  core.Account
	Expected core.Money
}

// Reconcile replays every account's transactions and reports the accounts
// whose cached balance differs. It never writes.
func (s *AccountService) Reconcile(ctx context.Context, owner int64) ([]Drift, error) {
	var drifts []Drift
	q := s.storage.Queries()
	accounts, err := q.ListAccounts(ctx, owner)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		want, err := q.ReplaySignedSum(ctx, owner, a.ID)
		if err != nil {
			return nil, err
		}
		if want != a.Balance {
			drifts = append(drifts, Drift{Account: a, Expected: want})
		}
	}
	return drifts, nil
}
