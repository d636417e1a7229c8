package storage

import (
	"context"
	"fmt"

	"meloon/internal/core"
)

const userColumns = `id, email, password_hash, nickname, language`

// CreateUser inserts u; a taken email is a Conflict.
func (q *Queries) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, nickname, language) VALUES (?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Nickname, u.Language)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.Conflict("register", "email %s is already registered", u.Email)
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return core.User{}, fmt.Errorf("user id: %w", err)
	}
	return u, nil
}

// FindUserByEmail matches case-insensitively.
func (q *Queries) FindUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	var u core.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.Language); err != nil {
		return core.User{}, notFound(err, "find user", "user %q", email)
	}
	return u, nil
}
