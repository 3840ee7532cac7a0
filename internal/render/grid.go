package render

import (
	"strconv"
	"strings"
	"time"

	"prodcal/internal/model"
	"prodcal/internal/workday"
)

// Options controls how month grids are laid out and decorated.
type Options struct {
	// Title heads the printable document, e.g. "Production Calendar".
	Title     string
	WeekStart time.Weekday
	// Today marks one cell. The zero value marks nothing.
	Today time.Time
	// Highlight lists keywords; events whose name contains one are drawn in red.
	Highlight []string
}

// ParseWeekStart maps a config value to a weekday. Anything other than
// "sunday" starts the week on Monday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Entry is one event as shown inside a cell.
type Entry struct {
	ID        string
	Name      string
	Notes     string
	Highlight bool
}

// Cell is one day of a month grid. Cells outside the month pad the first and
// last week and never carry events.
type Cell struct {
	Date    time.Time
	InMonth bool
	Weekend bool
	Today   bool
	Events  []Entry
}

// Day returns the day of month.
func (c Cell) Day() int { return c.Date.Day() }

// MonthGrid is a month laid out as whole weeks.
type MonthGrid struct {
	Year    int
	Month   time.Month
	Headers []string
	Weeks   [][]Cell
	Count   int
}

// Title returns "January 2026".
func (m MonthGrid) Title() string {
	return m.Month.String() + " " + strconv.Itoa(m.Year)
}

// GroupByMonth buckets events by month and then by day of month. Events keep
// their input order within a day.
func GroupByMonth(events []model.CalendarEvent) map[time.Month]map[int][]model.CalendarEvent {
	out := make(map[time.Month]map[int][]model.CalendarEvent)
	for _, e := range events {
		m := e.Date.Month()
		if out[m] == nil {
			out[m] = make(map[int][]model.CalendarEvent)
		}
		out[m][e.Date.Day()] = append(out[m][e.Date.Day()], e)
	}
	return out
}

// Highlighted reports whether name contains any keyword, ignoring case.
func Highlighted(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// BuildYear lays out all twelve months of year. Events dated outside year
// (a January date shifted back into December) are left out.
func BuildYear(year int, events []model.CalendarEvent, opts Options) []MonthGrid {
	inYear := make([]model.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.Date.Year() == year {
			inYear = append(inYear, e)
		}
	}
	grouped := GroupByMonth(inYear)

	out := make([]MonthGrid, 0, 12)
	for m := time.January; m <= time.December; m++ {
		out = append(out, BuildMonth(year, m, grouped[m], opts))
	}
	return out
}

// BuildMonth lays out one month. byDay maps day of month to that day's events.
func BuildMonth(year int, month time.Month, byDay map[int][]model.CalendarEvent, opts Options) MonthGrid {
	grid := MonthGrid{Year: year, Month: month, Headers: weekHeaders(opts.WeekStart)}

	first := workday.Date(year, month, 1)
	last := workday.Date(year, month, workday.DaysInMonth(year, month))
	offset := (int(first.Weekday()) - int(opts.WeekStart) + 7) % 7
	start := first.AddDate(0, 0, -offset)

	today := dateOnly(opts.Today)
	for day := start; !day.After(last); {
		week := make([]Cell, 0, 7)
		for range 7 {
			c := Cell{
				Date:    day,
				InMonth: day.Month() == month,
				Weekend: workday.IsWeekend(day),
				Today:   !opts.Today.IsZero() && day.Equal(today),
			}
			if c.InMonth {
				for _, e := range byDay[day.Day()] {
					c.Events = append(c.Events, Entry{
						ID:        e.ID,
						Name:      e.RuleName,
						Notes:     e.Notes,
						Highlight: Highlighted(e.RuleName, opts.Highlight),
					})
				}
				grid.Count += len(c.Events)
			}
			week = append(week, c)
			day = day.AddDate(0, 0, 1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}

func weekHeaders(start time.Weekday) []string {
	out := make([]string, 0, 7)
	for i := range 7 {
		out = append(out, time.Weekday((int(start)+i)%7).String()[:3])
	}
	return out
}

// dateOnly drops the clock and zone so a wall-clock "now" compares against
// UTC-midnight cell dates.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return workday.Date(t.Year(), t.Month(), t.Day())
}
