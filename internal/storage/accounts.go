package storage

import (
	"context"
	"database/sql"
	"fmt"

	"meloon/internal/core"
)

const accountColumns = `id, owner_id, name, type, balance_cents`

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	err := row.Scan(&a.ID, &a.OwnerID, &a.Name, &a.Type, &a.Balance.Cents)
	return a, err
}

func (q *Queries) CreateAccount(ctx context.Context, owner int64, name, typ string) (core.Account, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO accounts (owner_id, name, type, balance_cents) VALUES (?, ?, ?, 0)`,
		owner, name, typ)
	if err != nil {
		return core.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account id: %w", err)
	}
	return core.Account{ID: id, OwnerID: owner, Name: name, Type: typ}, nil
}

func (q *Queries) GetAccount(ctx context.Context, owner, id int64) (core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ? AND owner_id = ?`, id, owner)
	a, err := scanAccount(row)
	if err != nil {
		return core.Account{}, notFound(err, "get account", "account %d", id)
	}
	return a, nil
}

// FindAccountByName resolves a display name, used by spreadsheet import.
func (q *Queries) FindAccountByName(ctx context.Context, owner int64, name string) (core.Account, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? AND name = ? ORDER BY id LIMIT 1`, owner, name)
	a, err := scanAccount(row)
	if err != nil {
		return core.Account{}, notFound(err, "find account", "account %q", name)
	}
	return a, nil
}

func (q *Queries) ListAccounts(ctx context.Context, owner int64) ([]core.Account, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE owner_id = ? ORDER BY id`, owner)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateAccountMeta changes name and type; the balance is never written here.
func (q *Queries) UpdateAccountMeta(ctx context.Context, a core.Account) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ? WHERE id = ? AND owner_id = ?`,
		a.Name, a.Type, a.ID, a.OwnerID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "update account", "account %d", a.ID)
}

// AdjustBalance adds delta to the account balance in one statement and
// returns the new balance. A missing or foreign account is NotFound.
func (q *Queries) AdjustBalance(ctx context.Context, owner, id, delta int64) (core.Money, error) {
	var balance int64
	err := q.db.QueryRowContext(ctx,
		`UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ? AND owner_id = ? RETURNING balance_cents`,
		delta, id, owner).Scan(&balance)
	if err != nil {
		return core.Money{}, notFound(err, "adjust balance", "account %d", id)
	}
	return core.Cents(balance), nil
}

func (q *Queries) DeleteAccount(ctx context.Context, owner, id int64) error {
	var refs int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ? AND owner_id = ?`, id, owner).Scan(&refs); err != nil {
		return fmt.Errorf("count account references: %w", err)
	}
	if refs > 0 {
		return core.Conflict("delete account", "account %d is referenced by %d transactions", id, refs)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Conflict("delete account", "account %d is still referenced", id)
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res, "delete account", "account %d", id)
}

// SumBalances is the owner's total balance across accounts.
func (q *Queries) SumBalances(ctx context.Context, owner int64) (core.Money, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE owner_id = ?`, owner).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum balances: %w", err)
	}
	return core.Cents(total), nil
}

// ReplaySignedSum recomputes what the account balance should be from its
// transactions. It is used for reconciliation only.
func (q *Queries) ReplaySignedSum(ctx context.Context, owner, id int64) (core.Money, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'INCOME' THEN amount_cents ELSE -amount_cents END), 0)
		FROM transactions WHERE account_id = ? AND owner_id = ?`, id, owner).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("replay account %d: %w", id, err)
	}
	return core.Cents(total), nil
}

func requireRow(res sql.Result, op, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return core.NotFound(op, format, args...)
	}
	return nil
}
