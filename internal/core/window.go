package core

import (
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the storage and spreadsheet representation of instants.
const TimeLayout = "2006-01-02 15:04:05"

// Window is a half-open interval [Start, End). A zero bound is unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

// MonthWindow returns the calendar month containing year/month in UTC.
func MonthWindow(year int, month time.Month) Window {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// YearWindow returns the calendar year in UTC.
func YearWindow(year int) Window {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(1, 0, 0)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

// Months splits the window into calendar months, chronologically.
func (w Window) Months() []Window {
	var out []Window
	for cur := w.Start; cur.Before(w.End); cur = cur.AddDate(0, 1, 0) {
		out = append(out, MonthWindow(cur.Year(), cur.Month()))
	}
	return out
}

// CurrentMonth is the UTC calendar month containing now.
func CurrentMonth(now time.Time) Window {
	now = now.UTC()
	return MonthWindow(now.Year(), now.Month())
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Window, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Window{}, Validation("parse month", "%q is not YYYY-MM", s)
	}
	return MonthWindow(t.Year(), t.Month()), nil
}

// ParseYear parses "YYYY".
func ParseYear(s string) (Window, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 1 || y > 9999 {
		return Window{}, Validation("parse year", "%q is not YYYY", s)
	}
	return YearWindow(y), nil
}

// DayRange turns an inclusive pair of calendar days ("YYYY-MM-DD", either may
// be empty) into a half-open window ending at the midnight after endDay.
func DayRange(startDay, endDay string) (Window, error) {
	var w Window
	if s := strings.TrimSpace(startDay); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Window{}, Validation("parse start_date", "%q is not YYYY-MM-DD", startDay)
		}
		w.Start = t
	}
	if s := strings.TrimSpace(endDay); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return Window{}, Validation("parse end_date", "%q is not YYYY-MM-DD", endDay)
		}
		w.End = t.AddDate(0, 0, 1)
	}
	return w, nil
}

// PeriodType selects the report granularity.
type PeriodType string

const (
	PeriodMonth PeriodType = "MONTH"
	PeriodYear  PeriodType = "YEAR"
)

// Period is a resolved report period.
type Period struct {
	Type   PeriodType
	Window Window
}

// Label renders the period the way it is requested: YYYY-MM or YYYY.
func (p Period) Label() string {
	if p.Type == PeriodYear {
		return p.Window.Start.Format("2006")
	}
	return p.Window.Start.Format("2006-01")
}

// ParsePeriod resolves period_type and date; an empty date means the period
// containing now.
func ParsePeriod(periodType, date string, now time.Time) (Period, error) {
	pt := PeriodType(strings.ToUpper(strings.TrimSpace(periodType)))
	if pt == "" {
		pt = PeriodMonth
	}
	now = now.UTC()
	switch pt {
	case PeriodMonth:
		if strings.TrimSpace(date) == "" {
			return Period{Type: pt, Window: CurrentMonth(now)}, nil
		}
		w, err := ParseMonth(date)
		return Period{Type: pt, Window: w}, err
	case PeriodYear:
		if strings.TrimSpace(date) == "" {
			return Period{Type: pt, Window: YearWindow(now.Year())}, nil
		}
		w, err := ParseYear(date)
		return Period{Type: pt, Window: w}, err
	}
	return Period{}, Validation("parse period", "unknown period_type %q", periodType)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	TimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and the common naive layouts; naive values are
// taken as UTC. The result is truncated to whole seconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, Validation("parse time", "%q is not a recognised timestamp", s)
}
