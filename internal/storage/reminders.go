package storage

import (
	"context"
	"fmt"
	"time"

	"meloon/internal/core"
)

const reminderColumns = `id, owner_id, event_name, remind_at, frequency, note, is_active, last_fired_at`

func scanReminder(row interface{ Scan(...any) error }) (core.Reminder, error) {
	var (
		r      core.Reminder
		at     string
		freq   string
		active int
		fired  string
	)
	if err := row.Scan(&r.ID, &r.OwnerID, &r.EventName, &at, &freq, &r.Note, &active, &fired); err != nil {
		return core.Reminder{}, err
	}
	tod, err := core.ParseTimeOfDay(at)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("stored reminder time: %w", err)
	}
	r.At = tod
	r.Frequency = core.Frequency(freq)
	r.Active = active != 0
	if r.LastFiredAt, err = parseTime(fired); err != nil {
		return core.Reminder{}, err
	}
	return r, nil
}

func (q *Queries) CreateReminder(ctx context.Context, r core.Reminder) (core.Reminder, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO reminders (owner_id, event_name, remind_at, frequency, note, is_active) VALUES (?, ?, ?, ?, ?, ?)`,
		r.OwnerID, r.EventName, r.At.String(), string(r.Frequency), r.Note, boolToInt(r.Active))
	if err != nil {
		return core.Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return core.Reminder{}, fmt.Errorf("reminder id: %w", err)
	}
	return r, nil
}

func (q *Queries) GetReminder(ctx context.Context, owner, id int64) (core.Reminder, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE id = ? AND owner_id = ?`, id, owner)
	r, err := scanReminder(row)
	if err != nil {
		return core.Reminder{}, notFound(err, "get reminder", "reminder %d", id)
	}
	return r, nil
}

func (q *Queries) ListReminders(ctx context.Context, owner int64) ([]core.Reminder, error) {
	return q.queryReminders(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE owner_id = ? ORDER BY id DESC`, owner)
}

// ListActiveReminders spans every owner; it feeds the reminder worker.
func (q *Queries) ListActiveReminders(ctx context.Context) ([]core.Reminder, error) {
	return q.queryReminders(ctx, `SELECT `+reminderColumns+` FROM reminders WHERE is_active = 1 ORDER BY id`)
}

func (q *Queries) queryReminders(ctx context.Context, query string, args ...any) ([]core.Reminder, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer rows.Close()

	out := []core.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) UpdateReminder(ctx context.Context, r core.Reminder) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE reminders SET event_name = ?, remind_at = ?, frequency = ?, note = ?, is_active = ? WHERE id = ? AND owner_id = ?`,
		r.EventName, r.At.String(), string(r.Frequency), r.Note, boolToInt(r.Active), r.ID, r.OwnerID)
	if err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return requireRow(res, "update reminder", "reminder %d", r.ID)
}

func (q *Queries) DeleteReminder(ctx context.Context, owner, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ? AND owner_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return requireRow(res, "delete reminder", "reminder %d", id)
}

// MarkReminderFired records a firing; once-only reminders are deactivated.
func (q *Queries) MarkReminderFired(ctx context.Context, id int64, at time.Time, deactivate bool) error {
	query := `UPDATE reminders SET last_fired_at = ? WHERE id = ?`
	if deactivate {
		query = `UPDATE reminders SET last_fired_at = ?, is_active = 0 WHERE id = ?`
	}
	res, err := q.db.ExecContext(ctx, query, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("mark reminder fired: %w", err)
	}
	return requireRow(res, "mark reminder fired", "reminder %d", id)
}
