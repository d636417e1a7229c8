package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"meloon/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the connection pool and hands out Queries bound
// either to the pool or to a write transaction.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// DSN builds the modernc connection string. Writers take the database lock
// at BEGIN so balance updates never interleave.
func DSN(path string) string {
	return path +
		"?_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Queries returns statements bound to the pool, for reads.
func (r *SQLiteRepository) Queries() *Queries {
	return r.queries
}

// WithTx runs fn inside one write transaction. Any error from fn rolls
// every statement back.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.WarnContext(ctx, "Rollback failed", "error", err)
		}
	}()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// SeedCategories inserts the default categories for owner unless system
// categories already exist. It returns how many rows were created.
func (r *SQLiteRepository) SeedCategories(ctx context.Context, owner int64, defaults []core.Category) (int, error) {
	var created int
	err := r.WithTx(ctx, func(q *Queries) error {
		var err error
		created, err = q.SeedSystemCategories(ctx, owner, defaults)
		return err
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		slog.InfoContext(ctx, "Seeded system categories", "owner_id", owner, "count", created)
	}
	return created, nil
}
