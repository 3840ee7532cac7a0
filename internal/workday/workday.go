// Package workday implements the calendar arithmetic behind rule expansion.
//
// All dates are naive calendar dates represented as time.Time values at
// midnight UTC. No holiday list is consulted: a working day is any day that
// is not a Saturday or Sunday.
package workday

import "time"

// Date returns the calendar date year-month-day at midnight UTC. Out-of-range
// days normalize like time.Date does; use DayOf when the day must be valid.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf returns the date for day within year/month, or false when the month
// has no such day (day 0, day 31 in April, day 30 in February).
func DayOf(year int, month time.Month, day int) (time.Time, bool) {
	if month < time.January || month > time.December {
		return time.Time{}, false
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, false
	}
	return Date(year, month, day), true
}

// IsWeekend reports whether d falls on a Saturday or Sunday.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysInMonth returns the last valid day number of the month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return Date(year, month+1, 0).Day()
}

// FirstWorkingDay returns day 1 advanced past any weekend days.
func FirstWorkingDay(year int, month time.Month) time.Time {
	d := Date(year, month, 1)
	for IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// LastWorkingDay returns the last day of the month retreated past any
// weekend days.
func LastWorkingDay(year int, month time.Month) time.Time {
	d := Date(year, month, DaysInMonth(year, month))
	for IsWeekend(d) {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// PreviousFriday moves a Saturday or Sunday back to the preceding Friday.
// Any other day is returned unchanged.
func PreviousFriday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	default:
		return d
	}
}

// NextMonday moves a Saturday or Sunday forward to the following Monday.
// Any other day is returned unchanged.
func NextMonday(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Sunday:
		return d.AddDate(0, 0, 1)
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	default:
		return d
	}
}

// NextWorkingDay returns the first working day strictly after d.
func NextWorkingDay(d time.Time) time.Time {
	next := d.AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// NthWeekdayOfMonth returns the n-th (0-indexed) occurrence of weekday in the
// month. It reports false when the month has fewer than n+1 occurrences.
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) (time.Time, bool) {
	if n < 0 {
		return time.Time{}, false
	}
	first := Date(year, month, 1)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + 7*n
	return DayOf(year, month, day)
}

// LastWeekdayOfMonth returns the final occurrence of weekday in the month.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	last := Date(year, month, DaysInMonth(year, month))
	back := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -back)
}

// WorkingDays lists every non-weekend day of the month in order.
func WorkingDays(year int, month time.Month) []time.Time {
	n := DaysInMonth(year, month)
	out := make([]time.Time, 0, n)
	for day := 1; day <= n; day++ {
		d := Date(year, month, day)
		if !IsWeekend(d) {
			out = append(out, d)
		}
	}
	return out
}

// NthWorkingDay returns the n-th (1-indexed) working day of the month.
func NthWorkingDay(year int, month time.Month, n int) (time.Time, bool) {
	days := WorkingDays(year, month)
	if n < 1 || n > len(days) {
		return time.Time{}, false
	}
	return days[n-1], true
}
