package storage

import (
	"context"
	"fmt"

	"meloon/internal/core"
)

const debtColumns = `id, owner_id, type, person, amount_cents, occurred_at, note`

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var (
		d   core.Debt
		typ string
		at  string
	)
	if err := row.Scan(&d.ID, &d.OwnerID, &typ, &d.Person, &d.Amount.Cents, &at, &d.Note); err != nil {
		return core.Debt{}, err
	}
	d.Type = core.DebtType(typ)
	t, err := parseTime(at)
	if err != nil {
		return core.Debt{}, err
	}
	d.Time = t
	return d, nil
}

func (q *Queries) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO debts (owner_id, type, person, amount_cents, occurred_at, note) VALUES (?, ?, ?, ?, ?, ?)`,
		d.OwnerID, string(d.Type), d.Person, d.Amount.Cents, formatTime(d.Time), d.Note)
	if err != nil {
		return core.Debt{}, fmt.Errorf("insert debt: %w", err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return core.Debt{}, fmt.Errorf("debt id: %w", err)
	}
	return d, nil
}

func (q *Queries) GetDebt(ctx context.Context, owner, id int64) (core.Debt, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+debtColumns+` FROM debts WHERE id = ? AND owner_id = ?`, id, owner)
	d, err := scanDebt(row)
	if err != nil {
		return core.Debt{}, notFound(err, "get debt", "debt %d", id)
	}
	return d, nil
}

func (q *Queries) UpdateDebt(ctx context.Context, d core.Debt) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE debts SET type = ?, person = ?, amount_cents = ?, occurred_at = ?, note = ? WHERE id = ? AND owner_id = ?`,
		string(d.Type), d.Person, d.Amount.Cents, formatTime(d.Time), d.Note, d.ID, d.OwnerID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireRow(res, "update debt", "debt %d", d.ID)
}

func (q *Queries) DeleteDebt(ctx context.Context, owner, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM debts WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return requireRow(res, "delete debt", "debt %d", id)
}

// ListDebts returns one page, newest first. pageSize <= 0 returns every row.
func (q *Queries) ListDebts(ctx context.Context, owner int64, f core.DebtFilter, pageSize int) (core.Page[core.Debt], error) {
	page := core.Page[core.Debt]{Page: core.NormalizePage(f.Page), PageSize: pageSize}
	where := ` WHERE owner_id = ?`
	args := []any{owner}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, string(f.Type))
	}

	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM debts`+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count debts: %w", err)
	}

	query := `SELECT ` + debtColumns + ` FROM debts` + where + ` ORDER BY occurred_at DESC, id DESC`
	if pageSize > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, pageSize, pageOffset(f.Page, pageSize))
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return page, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	page.Items = []core.Debt{}
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return page, fmt.Errorf("scan debt: %w", err)
		}
		page.Items = append(page.Items, d)
	}
	return page, rows.Err()
}

// DebtTotals sums amounts per debt type.
func (q *Queries) DebtTotals(ctx context.Context, owner int64) (borrow, lend core.Money, err error) {
	err = q.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'BORROW' THEN amount_cents END), 0),
			COALESCE(SUM(CASE WHEN type = 'LEND' THEN amount_cents END), 0)
		FROM debts WHERE owner_id = ?`, owner).Scan(&borrow.Cents, &lend.Cents)
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("debt totals: %w", err)
	}
	return borrow, lend, nil
}
