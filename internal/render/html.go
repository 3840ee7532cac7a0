package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"prodcal/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	// documentCellLimit caps events per printed cell; the rest collapse
	// into "+N more".
	documentCellLimit = 4
	documentNameWidth = 22
	pageNameWidth     = 28
	defaultTitle      = "Production Calendar"
)

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"limit":    limit,
	"overflow": overflow,
	"truncate": truncate,
}).ParseFS(templateFS, "templates/*.tmpl"))

type monthView struct {
	MonthGrid
	Limit     int
	NameWidth int
}

type summaryItem struct {
	Date      string
	Name      string
	Notes     string
	Highlight bool
}

type summaryMonth struct {
	Month time.Month
	Items []summaryItem
}

type pageData struct {
	Title   string
	Year    int
	Months  []monthView
	Summary []summaryMonth
}

// WriteCalendarPage renders the browsable year grid. The root element carries
// data-ready="true" so a headless browser can tell rendering has finished.
func WriteCalendarPage(w io.Writer, year int, events []model.CalendarEvent, opts Options) error {
	data := newPageData(year, events, opts, 0, pageNameWidth)
	if err := pages.ExecuteTemplate(w, "calendar.tmpl", data); err != nil {
		return fmt.Errorf("render calendar page: %w", err)
	}
	return nil
}

// WriteDocument renders the printable document: a title page, one page per
// month and a summary page listing every event.
func WriteDocument(w io.Writer, year int, events []model.CalendarEvent, opts Options) error {
	data := newPageData(year, events, opts, documentCellLimit, documentNameWidth)
	data.Summary = buildSummary(year, events, opts.Highlight)
	if err := pages.ExecuteTemplate(w, "document.tmpl", data); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}

func newPageData(year int, events []model.CalendarEvent, opts Options, cellLimit, nameWidth int) pageData {
	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	grids := BuildYear(year, events, opts)
	months := make([]monthView, 0, len(grids))
	for _, g := range grids {
		months = append(months, monthView{MonthGrid: g, Limit: cellLimit, NameWidth: nameWidth})
	}
	return pageData{Title: title, Year: year, Months: months}
}

// buildSummary lists events month by month, skipping empty months.
func buildSummary(year int, events []model.CalendarEvent, highlight []string) []summaryMonth {
	grouped := make(map[time.Month][]summaryItem)
	for _, e := range events {
		if e.Date.Year() != year {
			continue
		}
		grouped[e.Date.Month()] = append(grouped[e.Date.Month()], summaryItem{
			Date:      e.Date.Format("Mon, Jan 02"),
			Name:      e.RuleName,
			Notes:     e.Notes,
			Highlight: Highlighted(e.RuleName, highlight),
		})
	}

	var out []summaryMonth
	for m := time.January; m <= time.December; m++ {
		if items := grouped[m]; len(items) > 0 {
			out = append(out, summaryMonth{Month: m, Items: items})
		}
	}
	return out
}

// limit returns the first n entries; n <= 0 means all.
func limit(es []Entry, n int) []Entry {
	if n <= 0 || len(es) <= n {
		return es
	}
	return es[:n]
}

func overflow(es []Entry, n int) int {
	if n <= 0 || len(es) <= n {
		return 0
	}
	return len(es) - n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
