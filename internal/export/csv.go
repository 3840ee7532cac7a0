package export

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"prodcal/internal/model"
)

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Month", "Date", "Day", "Event Name", "Notes"}

// WriteCSV writes one row per event, sorted by date. Every field is quoted
// and embedded quotes are doubled, so spreadsheet tools never reinterpret
// dates or leading symbols.
func WriteCSV(w io.Writer, events []model.CalendarEvent) error {
	bw := bufio.NewWriter(w)
	if err := writeRow(bw, CSVHeader); err != nil {
		return err
	}
	for _, e := range sortedByDate(events) {
		row := []string{
			e.Date.Month().String(),
			e.DateKey(),
			e.Date.Weekday().String(),
			e.RuleName,
			e.Notes,
		}
		if err := writeRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// CSV returns the CSV export as a string.
func CSV(events []model.CalendarEvent) string {
	var b strings.Builder
	_ = WriteCSV(&b, events)
	return b.String()
}

func writeRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(f)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func sortedByDate(events []model.CalendarEvent) []model.CalendarEvent {
	out := slices.Clone(events)
	slices.SortStableFunc(out, func(a, b model.CalendarEvent) int {
		return a.Date.Compare(b.Date)
	})
	return out
}
