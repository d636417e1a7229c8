package storage

import (
	"context"
	"fmt"

	"meloon/internal/core"
)

const categoryColumns = `id, owner_id, name, type, icon, is_system`

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var (
		c      core.Category
		typ    string
		system int
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &typ, &c.Icon, &system); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TxType(typ)
	c.IsSystem = system != 0
	return c, nil
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (owner_id, name, type, icon, is_system) VALUES (?, ?, ?, ?, ?)`,
		c.OwnerID, c.Name, string(c.Type), c.Icon, boolToInt(c.IsSystem))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (q *Queries) GetCategory(ctx context.Context, owner, id int64) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND owner_id = ?`, id, owner)
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, notFound(err, "get category", "category %d", id)
	}
	return c, nil
}

// FindCategoryByName resolves a display name within a type, used by
// spreadsheet import.
func (q *Queries) FindCategoryByName(ctx context.Context, owner int64, name string, typ core.TxType) (core.Category, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? AND name = ? AND type = ? ORDER BY id LIMIT 1`,
		owner, name, string(typ))
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, notFound(err, "find category", "category %q", name)
	}
	return c, nil
}

// ListCategories returns the owner's categories, optionally of one type.
func (q *Queries) ListCategories(ctx context.Context, owner int64, typ core.TxType) ([]core.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE owner_id = ?`
	args := []any{owner}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY is_system DESC, id`

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ? WHERE id = ? AND owner_id = ?`,
		c.Name, c.Icon, c.ID, c.OwnerID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "update category", "category %d", c.ID)
}

func (q *Queries) DeleteCategory(ctx context.Context, owner, id int64) error {
	var refs int
	if err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE category_id = ? AND owner_id = ?`, id, owner).Scan(&refs); err != nil {
		return fmt.Errorf("count category references: %w", err)
	}
	if refs > 0 {
		return core.Conflict("delete category", "category %d is referenced by %d transactions", id, refs)
	}
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.Conflict("delete category", "category %d is still referenced", id)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res, "delete category", "category %d", id)
}

// CountSystemCategories reports whether an owner has been seeded.
func (q *Queries) CountSystemCategories(ctx context.Context, owner int64) (int, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE owner_id = ? AND is_system = 1`, owner).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count system categories: %w", err)
	}
	return n, nil
}

// SeedSystemCategories is SeedCategories for a caller already inside a
// transaction.
func (q *Queries) SeedSystemCategories(ctx context.Context, owner int64, defaults []core.Category) (int, error) {
	n, err := q.CountSystemCategories(ctx, owner)
	if err != nil || n > 0 {
		return 0, err
	}
	for i, c := range defaults {
		c.OwnerID = owner
		c.IsSystem = true
		if _, err := q.CreateCategory(ctx, c); err != nil {
			return i, err
		}
	}
	return len(defaults), nil
}
