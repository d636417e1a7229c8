package services

import (
	"context"
	"fmt"

	"meloon/internal/core"
	"meloon/internal/storage"
)

type ReminderService struct {
	storage *storage.SQLiteRepository
}

func NewReminderService(repo *storage.SQLiteRepository) *ReminderService {
	return &ReminderService{storage: repo}
}

func (s *ReminderService) Add(ctx context.Context, owner int64, cmd core.ReminderCreate) (core.Reminder, error) {
	if err := cmd.Validate(); err != nil {
		return core.Reminder{}, err
	}
	r, err := s.storage.Queries().CreateReminder(ctx, core.Reminder{
		OwnerID:   owner,
		EventName: cmd.EventName,
		At:        cmd.At,
		Frequency: cmd.Frequency,
		Note:      cmd.Note,
		Active:    true,
	})
	if err != nil {
		return core.Reminder{}, fmt.Errorf("add reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderService) Update(ctx context.Context, owner int64, cmd core.ReminderUpdate) (core.Reminder, error) {
	if err := cmd.Validate(); err != nil {
		return core.Reminder{}, err
	}
	var r core.Reminder
	err := s.storage.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		if r, err = q.GetReminder(ctx, owner, cmd.ID); err != nil {
			return err
		}
		cmd.Apply(&r)
		return q.UpdateReminder(ctx, r)
	})
	if err != nil {
		return core.Reminder{}, fmt.Errorf("update reminder: %w", err)
	}
	return r, nil
}

func (s *ReminderService) Delete(ctx context.Context, owner int64, req core.DeleteRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.storage.Queries().DeleteReminder(ctx, owner, req.ID)
}

func (s *ReminderService) List(ctx context.Context, owner int64) ([]core.Reminder, error) {
	return s.storage.Queries().ListReminders(ctx, owner)
}
