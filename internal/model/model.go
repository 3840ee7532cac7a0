package model

import "time"

// RawLine is one non-blank line of rule input, split at the first " - ".
type RawLine struct {
	Name string
	// RuleText is everything after the first separator, later separators
	// included. Empty when the line has no separator.
	RuleText string
	// Notes carries the same text for display and export.
	Notes string
}

// CalendarEvent is a single dated occurrence produced by rule expansion.
//
// ID is a display key of the form <line>-<month>[-<day>] and is not unique
// across rules in a business sense. Month and Year always mirror Date, even
// when a weekend shift moved the date out of the month it was generated for.
type CalendarEvent struct {
	ID       string
	RuleName string
	Date     time.Time
	Month    time.Month
	Year     int
	Notes    string
}

// MonthIndex returns the 0-based month (January = 0).
func (e CalendarEvent) MonthIndex() int {
	return int(e.Month) - 1
}

// DateKey formats the event date as YYYY-MM-DD.
func (e CalendarEvent) DateKey() string {
	return e.Date.Format("2006-01-02")
}
