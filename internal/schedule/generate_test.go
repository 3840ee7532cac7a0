package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/model"
	"prodcal/internal/workday"
)

func dateKeys(events []model.CalendarEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.DateKey())
	}
	return out
}

func TestGenerateSingleDate(t *testing.T) {
	events := GenerateEvents("Year-End Close - 31st of December", 2026)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "0-11", e.ID)
	assert.Equal(t, "Year-End Close", e.RuleName)
	assert.Equal(t, workday.Date(2026, time.December, 31), e.Date)
	assert.Equal(t, time.December, e.Month)
	assert.Equal(t, 2026, e.Year)
	assert.Equal(t, "31st of December", e.Notes)
}

func TestGenerateFirstWorkingDay(t *testing.T) {
	events := GenerateEvents("NA Monthend - First working day of every month", 2026)
	assert.Equal(t, []string{
		"2026-01-01", "2026-02-02", "2026-03-02", "2026-04-01",
		"2026-05-01", "2026-06-01", "2026-07-01", "2026-08-03",
		"2026-09-01", "2026-10-01", "2026-11-02", "2026-12-01",
	}, dateKeys(events))
	for _, e := range events {
		assert.False(t, workday.IsWeekend(e.Date))
	}
}

func TestGeneratePreviousFriday(t *testing.T) {
	events := GenerateEvents("EU cost corrections - runs every 9th, if 9th is weekend it runs on the previous Friday", 2026)
	require.Len(t, events, 12)

	byMonth := make(map[time.Month]string)
	for _, e := range events {
		byMonth[e.Month] = e.DateKey()
	}
	assert.Equal(t, "2026-05-08", byMonth[time.May])
	assert.Equal(t, "2026-08-07", byMonth[time.August])
	assert.Equal(t, "2026-06-09", byMonth[time.June])
}

func TestGenerateDailyWeekdays(t *testing.T) {
	events := GenerateEvents("Daily Standup - every day except weekends", 2026)
	// 52 full weeks plus Thursday Dec 31.
	assert.Len(t, events, 261)

	var august int
	for _, e := range events {
		assert.False(t, workday.IsWeekend(e.Date), e.DateKey())
		if e.Month == time.August {
			august++
		}
	}
	// August 2026 opens on a Saturday and has 21 weekdays.
	assert.Equal(t, 21, august)
	assert.Equal(t, "0-7-3", events[indexOfDate(events, "2026-08-03")].ID)
}

func indexOfDate(events []model.CalendarEvent, key string) int {
	for i, e := range events {
		if e.DateKey() == key {
			return i
		}
	}
	return -1
}

func TestGenerateUnrecognized(t *testing.T) {
	res := Generate(ParseLines("Mystery Task - sometimes, maybe"), 2026)
	assert.Empty(t, res.Events)
	assert.Equal(t, []string{"Mystery Task"}, res.Unrecognized)
	assert.Equal(t, 2026, res.Year)
}

func TestGenerateQuarterly(t *testing.T) {
	events := GenerateEvents("Board Pack - quarterly", 2026)
	assert.Equal(t, []string{"2026-01-01", "2026-04-01", "2026-07-01", "2026-10-01"}, dateKeys(events))
	assert.Equal(t, []string{"0-0", "0-3", "0-6", "0-9"}, []string{events[0].ID, events[1].ID, events[2].ID, events[3].ID})
}

func TestGenerateDefaults(t *testing.T) {
	res := Generate(ParseLines(DefaultRulesText), 2026)
	assert.Empty(t, res.Unrecognized)
	assert.Len(t, res.Events, 120)

	var jan1 []string
	for _, e := range res.Events {
		if e.DateKey() == "2026-01-01" {
			jan1 = append(jan1, e.RuleName)
		}
	}
	// Same-day events keep line order.
	assert.Equal(t, []string{"NA Monthend", "Money currency update", "EU Dealer price extract"}, jan1)
}

func TestGenerateSortedAndIdempotent(t *testing.T) {
	input := "A - every Friday\nB - last day of the month\nC - 2026-03-15\nD - biweekly on tuesday"
	first := GenerateEvents(input, 2026)
	second := GenerateEvents(input, 2026)
	assert.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		assert.False(t, first[i].Date.Before(first[i-1].Date), "%s before %s", first[i].DateKey(), first[i-1].DateKey())
	}
}

func TestGenerateIDsUnique(t *testing.T) {
	events := GenerateEvents(DefaultRulesText+"Standup - every weekday\n", 2026)
	seen := make(map[string]bool, len(events))
	for _, e := range events {
		assert.False(t, seen[e.ID], e.ID)
		seen[e.ID] = true
	}
}

func TestGenerateEmptyInput(t *testing.T) {
	res := Generate(nil, 2026)
	assert.NotNil(t, res.Events)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Unrecognized)
}
