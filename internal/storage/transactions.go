package storage

import (
	"context"
	"fmt"
	"strings"

	"meloon/internal/core"
)

const transactionColumns = `t.id, t.owner_id, t.account_id, t.category_id, t.amount_cents, t.type,
	t.occurred_at, t.summary, t.counterparty, t.note`

const viewJoin = ` FROM transactions t
	JOIN categories c ON c.id = t.category_id
	JOIN accounts a ON a.id = t.account_id`

func scanTransaction(row interface{ Scan(...any) error }, extra ...any) (core.Transaction, error) {
	var (
		t   core.Transaction
		typ string
		at  string
	)
	dest := append([]any{&t.ID, &t.OwnerID, &t.AccountID, &t.CategoryID, &t.Amount.Cents, &typ,
		&at, &t.Summary, &t.Counterparty, &t.Note}, extra...)
	if err := row.Scan(dest...); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TxType(typ)
	parsed, err := parseTime(at)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Time = parsed
	return t, nil
}

func scanView(row interface{ Scan(...any) error }) (core.TransactionView, error) {
	var v core.TransactionView
	t, err := scanTransaction(row, &v.CategoryName, &v.AccountName)
	if err != nil {
		return core.TransactionView{}, err
	}
	v.Transaction = t
	return v, nil
}

func (q *Queries) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (owner_id, account_id, category_id, amount_cents, type, occurred_at, summary, counterparty, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.AccountID, t.CategoryID, t.Amount.Cents, string(t.Type), formatTime(t.Time),
		t.Summary, t.Counterparty, t.Note)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}
	return t, nil
}

func (q *Queries) GetTransaction(ctx context.Context, owner, id int64) (core.Transaction, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ? AND t.owner_id = ?`, id, owner)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, notFound(err, "get transaction", "transaction %d", id)
	}
	return t, nil
}

// UpdateTransaction rewrites every mutable column of t.
func (q *Queries) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE transactions
		SET account_id = ?, category_id = ?, amount_cents = ?, occurred_at = ?, summary = ?, counterparty = ?, note = ?
		WHERE id = ? AND owner_id = ?`,
		t.AccountID, t.CategoryID, t.Amount.Cents, formatTime(t.Time), t.Summary, t.Counterparty, t.Note,
		t.ID, t.OwnerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res, "update transaction", "transaction %d", t.ID)
}

func (q *Queries) DeleteTransaction(ctx context.Context, owner, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res, "delete transaction", "transaction %d", id)
}

func transactionFilter(owner int64, f core.TransactionFilter) (string, []any) {
	where := []string{"t.owner_id = ?"}
	args := []any{owner}
	if !f.Range.Start.IsZero() {
		where = append(where, "t.occurred_at >= ?")
		args = append(args, formatTime(f.Range.Start))
	}
	if !f.Range.End.IsZero() {
		where = append(where, "t.occurred_at < ?")
		args = append(args, formatTime(f.Range.End))
	}
	if f.Type != "" {
		where = append(where, "t.type = ?")
		args = append(args, string(f.Type))
	}
	if f.AccountID > 0 {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

// ListTransactions returns one page, newest first, with the total match count.
func (q *Queries) ListTransactions(ctx context.Context, owner int64, f core.TransactionFilter, pageSize int) (core.Page[core.TransactionView], error) {
	page := core.Page[core.TransactionView]{Page: core.NormalizePage(f.Page), PageSize: pageSize}
	where, args := transactionFilter(owner, f)

	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*)`+viewJoin+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + transactionColumns + `, c.name, a.name` + viewJoin + where +
		` ORDER BY t.occurred_at DESC, t.id DESC LIMIT ? OFFSET ?`
	rows, err := q.db.QueryContext(ctx, query, append(args, pageSize, pageOffset(f.Page, pageSize))...)
	if err != nil {
		return page, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	page.Items = []core.TransactionView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return page, fmt.Errorf("scan transaction: %w", err)
		}
		page.Items = append(page.Items, v)
	}
	return page, rows.Err()
}

// RecentTransactions returns the owner's n newest transactions.
func (q *Queries) RecentTransactions(ctx context.Context, owner int64, n int) ([]core.TransactionView, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, c.name, a.name`+viewJoin+
			` WHERE t.owner_id = ? ORDER BY t.occurred_at DESC, t.id DESC LIMIT ?`, owner, n)
	if err != nil {
		return nil, fmt.Errorf("recent transactions: %w", err)
	}
	defer rows.Close()

	out := []core.TransactionView{}
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// WindowEntries projects the owner's transactions inside w for aggregation.
func (q *Queries) WindowEntries(ctx context.Context, owner int64, w core.Window) ([]core.Entry, error) {
	where, args := transactionFilter(owner, core.TransactionFilter{Range: w})
	rows, err := q.db.QueryContext(ctx,
		`SELECT t.type, t.amount_cents, c.name, t.occurred_at FROM transactions t
		JOIN categories c ON c.id = t.category_id`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("window entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		var (
			e   core.Entry
			typ string
			at  string
		)
		if err := rows.Scan(&typ, &e.Amount.Cents, &e.CategoryName, &at); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Type = core.TxType(typ)
		if e.Time, err = parseTime(at); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// AllTransactions streams every transaction of the owner, oldest first, for export.
func (q *Queries) AllTransactions(ctx context.Context, owner int64) ([]core.TransactionView, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, c.name, a.name`+viewJoin+
			` WHERE t.owner_id = ? ORDER BY t.occurred_at, t.id`, owner)
	if err != nil {
		return nil, fmt.Errorf("all transactions: %w", err)
	}
	defer rows.Close()

	var out []core.TransactionView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
