package export

import (
	"encoding/json"
	"io"

	"prodcal/internal/model"
)

// Event is the JSON shape of a calendar event. Month is 1-12.
type Event struct {
	ID       string `json:"id"`
	RuleName string `json:"rule_name"`
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Notes    string `json:"notes,omitempty"`
}

// Events converts events to their JSON shape, keeping order.
func Events(events []model.CalendarEvent) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, Event{
			ID:       e.ID,
			RuleName: e.RuleName,
			Date:     e.DateKey(),
			Weekday:  e.Date.Weekday().String(),
			Month:    int(e.Month),
			Year:     e.Year,
			Notes:    e.Notes,
		})
	}
	return out
}

// Document is the top-level JSON export.
type Document struct {
	Year         int      `json:"year"`
	Count        int      `json:"count"`
	Events       []Event  `json:"events"`
	Unrecognized []string `json:"unrecognized,omitempty"`
}

// WriteJSON writes an indented Document.
func WriteJSON(w io.Writer, year int, events []model.CalendarEvent, unrecognized []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{
		Year:         year,
		Count:        len(events),
		Events:       Events(events),
		Unrecognized: unrecognized,
	})
}
