// Package period turns the reporting selectors of the API into date windows.
package period

import (
	"time"
)

// Period is a trailing lookback used by the analytics endpoints.
type Period string

const (
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// Parse returns the period named by raw, or def for an unknown or empty value.
func Parse(raw string, def Period) Period {
	switch p := Period(raw); p {
	case Week, Month, Year:
		return p
	default:
		return def
	}
}

// Days is the lookback length.
func (p Period) Days() int {
	switch p {
	case Week:
		return 7
	case Year:
		return 365
	default:
		return 30
	}
}

// Since returns the first date included in the window ending at now.
func (p Period) Since(now time.Time) time.Time {
	return Day(now).AddDate(0, 0, -p.Days())
}

// Window is a half-open date range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// Turno selectors accepted by the client portal.
const (
	TurnoToday    = "Today"
	TurnoTomorrow = "Tomorrow"
	TurnoThisWeek = "This Week"
)

// Turno maps a turno selector to a window. ok is false for an empty or unknown selector.
func Turno(raw string, now time.Time) (w Window, ok bool) {
	today := Day(now)
	switch raw {
	case TurnoToday:
		return Window{From: today, To: today.AddDate(0, 0, 1)}, true
	case TurnoTomorrow:
		return Window{From: today.AddDate(0, 0, 1), To: today.AddDate(0, 0, 2)}, true
	case TurnoThisWeek:
		return Window{From: today, To: today.AddDate(0, 0, 7)}, true
	default:
		return Window{}, false
	}
}

// MonthStart returns the first day of the month n months before now's month.
func MonthStart(now time.Time, n int) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -n, 0)
}

// Day truncates t to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
