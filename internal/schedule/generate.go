package schedule

import (
	"slices"
	"strconv"
	"time"

	appLog "prodcal/internal/log"
	"prodcal/internal/model"
)

// Result is the outcome of one generation run.
type Result struct {
	Year   int
	Events []model.CalendarEvent
	// Unrecognized holds the names of lines whose rule matched no family.
	Unrecognized []string
}

// GenerateEvents parses rawText and returns every event it yields in year,
// sorted by date.
func GenerateEvents(rawText string, year int) []model.CalendarEvent {
	return Generate(ParseLines(rawText), year).Events
}

// Generate classifies and expands every line for each month of year.
// Months are the outer loop and lines the inner one; the final stable sort by
// date keeps that discovery order for events on the same day. A line that
// yields nothing is not an error.
func Generate(lines []model.RawLine, year int) Result {
	res := Result{Year: year, Events: make([]model.CalendarEvent, 0)}
	warned := make(map[int]bool)

	for month := time.January; month <= time.December; month++ {
		for i, line := range lines {
			c := Classify(line.RuleText)
			if c.Family == FamilyUnrecognized {
				if !warned[i] {
					warned[i] = true
					res.Unrecognized = append(res.Unrecognized, line.Name)
					appLog.Warn("rule not recognized; line yields no events",
						"line", i,
						"name", line.Name,
						"rule", line.RuleText,
					)
				}
				continue
			}

			for _, d := range Expand(c, year, month) {
				res.Events = append(res.Events, newEvent(i, month, line, d, c.Recurring()))
			}
		}
	}

	slices.SortStableFunc(res.Events, func(a, b model.CalendarEvent) int {
		return a.Date.Compare(b.Date)
	})

	appLog.Info("calendar generated",
		"year", year,
		"lines", len(lines),
		"events", len(res.Events),
		"unrecognized", len(res.Unrecognized),
	)
	return res
}

// newEvent builds the event for one expanded date. The ID uses the month the
// rule was expanded for; Month and Year follow the (possibly shifted) date.
func newEvent(line int, month time.Month, raw model.RawLine, d time.Time, recurring bool) model.CalendarEvent {
	id := strconv.Itoa(line) + "-" + strconv.Itoa(int(month)-1)
	if recurring {
		id += "-" + strconv.Itoa(d.Day())
	}
	return model.CalendarEvent{
		ID:       id,
		RuleName: raw.Name,
		Date:     d,
		Month:    d.Month(),
		Year:     d.Year(),
		Notes:    raw.Notes,
	}
}
