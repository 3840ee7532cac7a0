package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/model"
	"prodcal/internal/schedule"
	"prodcal/internal/workday"
)

func TestWriteCalendarPage(t *testing.T) {
	events := schedule.GenerateEvents("R&D Review - 15th of every month\nTax Deadline - 31st of December", 2026)
	var buf bytes.Buffer
	require.NoError(t, WriteCalendarPage(&buf, 2026, events, Options{
		Title:     "Ops Calendar",
		WeekStart: time.Monday,
		Highlight: []string{"deadline"},
	}))
	out := buf.String()

	assert.Contains(t, out, `data-ready="true"`)
	assert.Contains(t, out, "<h1>Ops Calendar 2026</h1>")
	assert.Contains(t, out, "January 2026")
	assert.Contains(t, out, "December 2026")
	assert.Contains(t, out, "R&amp;D Review")
	assert.NotContains(t, out, "R&D Review")
	assert.Contains(t, out, `class="event red"`)
	assert.Equal(t, 12, strings.Count(out, `<section class="month">`))
	assert.Equal(t, 13, strings.Count(out, `class="day has-events`)+strings.Count(out, `class="day weekend has-events`))
}

func TestWriteCalendarPageDefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCalendarPage(&buf, 2026, nil, Options{}))
	assert.Contains(t, buf.String(), "<title>Production Calendar 2026</title>")
	assert.NotContains(t, buf.String(), `class="day has-events`)
}

func TestWriteCalendarPageToday(t *testing.T) {
	var buf bytes.Buffer
	today := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	require.NoError(t, WriteCalendarPage(&buf, 2026, nil, Options{Today: today}))
	assert.Equal(t, 1, strings.Count(buf.String(), " today"))
	assert.Contains(t, buf.String(), `today" data-date="2026-03-04"`)
}

func TestWriteDocument(t *testing.T) {
	events := schedule.GenerateEvents(schedule.DefaultRulesText, 2026)
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, 2026, events, Options{Title: "Production Calendar"}))
	out := buf.String()

	assert.Contains(t, out, `<div class="page cover"><h1>Production Calendar 2026</h1></div>`)
	assert.Equal(t, 12, strings.Count(out, `<div class="page">`))
	assert.Contains(t, out, "2026 Events Summary")
	assert.Contains(t, out, "Thu, Jan 01 - NA Monthend")
	assert.Contains(t, out, "Note: First working day of every month")
	assert.Contains(t, out, "landscape")
}

func TestWriteDocumentOverflow(t *testing.T) {
	var events []model.CalendarEvent
	for i := range 6 {
		events = append(events, model.CalendarEvent{
			ID:       string(rune('a' + i)),
			RuleName: "Task",
			Date:     workday.Date(2026, time.June, 1),
			Month:    time.June,
			Year:     2026,
		})
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, 2026, events, Options{}))
	assert.Contains(t, buf.String(), "+2 more")
	assert.Equal(t, 4, strings.Count(buf.String(), `class="event"`))
	assert.Equal(t, 6, strings.Count(buf.String(), "<li class=\"\">Mon, Jun 01 - Task"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "ünï...", truncate("ünïcode", 3))
	assert.Equal(t, "keep", truncate("keep", 0))
}

func TestLimitOverflow(t *testing.T) {
	es := make([]Entry, 5)
	assert.Len(t, limit(es, 4), 4)
	assert.Len(t, limit(es, 0), 5)
	assert.Equal(t, 1, overflow(es, 4))
	assert.Equal(t, 0, overflow(es, 0))
	assert.Equal(t, 0, overflow(es, 6))
}
