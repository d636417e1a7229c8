package services

import (
	"fmt"
	"time"

	"meloon/internal/core"
)

// DuenessChecker decides whether a reminder should fire. slot is today's
// instant of the reminder's time of day; callers only ask once now has
// reached it. lastFired is the slot of the previous firing, zero if never.
type DuenessChecker interface {
	IsDue(lastFired, slot time.Time) bool
}

// OnceChecker fires a single time.
type OnceChecker struct{}

func (OnceChecker) IsDue(lastFired, _ time.Time) bool {
	return lastFired.IsZero()
}

// DailyChecker fires when today's slot has not fired yet.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastFired, slot time.Time) bool {
	return lastFired.IsZero() || lastFired.Before(slot)
}

// WeeklyChecker fires when the last firing is at least seven days old.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastFired, slot time.Time) bool {
	if lastFired.IsZero() {
		return true
	}
	return !lastFired.After(slot.AddDate(0, 0, -7))
}

// MonthlyChecker fires once per calendar month.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastFired, slot time.Time) bool {
	if lastFired.IsZero() {
		return true
	}
	return lastFired.Year() != slot.Year() || lastFired.Month() != slot.Month()
}

var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Once:    OnceChecker{},
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
}

// GetDuenessChecker returns the checker for a reminder frequency.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown reminder frequency: %s", frequency)
	}
	return checker, nil
}

// IsReminderDue reports whether r should fire at now and, if so, the slot
// to record as its firing time.
func IsReminderDue(r core.Reminder, now time.Time) (bool, time.Time, error) {
	if !r.Active {
		return false, time.Time{}, nil
	}
	checker, err := GetDuenessChecker(r.Frequency)
	if err != nil {
		return false, time.Time{}, err
	}
	slot := r.At.On(now)
	if now.UTC().Before(slot) {
		return false, time.Time{}, nil
	}
	return checker.IsDue(r.LastFiredAt, slot), slot, nil
}
