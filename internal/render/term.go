package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"prodcal/internal/model"
)

const termCellWidth = 5

var (
	termTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Width(7 * termCellWidth).Align(lipgloss.Center)
	termHeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")).Width(termCellWidth).Align(lipgloss.Right)
	termCellStyle    = lipgloss.NewStyle().Width(termCellWidth).Align(lipgloss.Right)
	termWeekendStyle = termCellStyle.Foreground(lipgloss.Color("240"))
	termEventStyle   = termCellStyle.Bold(true).Foreground(lipgloss.Color("39"))
	termRedStyle     = termCellStyle.Bold(true).Foreground(lipgloss.Color("196"))
	termTodayStyle   = termCellStyle.Reverse(true)
	termListStyle    = lipgloss.NewStyle().PaddingLeft(2)
	termRedListStyle = termListStyle.Foreground(lipgloss.Color("196"))
	termNoteStyle    = lipgloss.NewStyle().PaddingLeft(14).Foreground(lipgloss.Color("244"))
	termFooterStyle  = lipgloss.NewStyle().Faint(true)
)

// RenderTerminal draws every month of year as a text grid followed by the
// month's event list. Days with events carry a "*" marker.
func RenderTerminal(w io.Writer, year int, events []model.CalendarEvent, opts Options) error {
	grids := BuildYear(year, events, opts)
	blocks := make([]string, 0, len(grids)+1)
	total := 0
	for _, g := range grids {
		blocks = append(blocks, renderTermMonth(g))
		total += g.Count
	}
	blocks = append(blocks, termFooterStyle.Render(fmt.Sprintf("%d events in %d", total, year)))

	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	return err
}

func renderTermMonth(g MonthGrid) string {
	rows := []string{termTitleStyle.Render(g.Title())}

	headers := make([]string, 0, len(g.Headers))
	for _, h := range g.Headers {
		headers = append(headers, termHeaderStyle.Render(h))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, headers...))

	var list []string
	for _, week := range g.Weeks {
		cells := make([]string, 0, len(week))
		for _, c := range week {
			cells = append(cells, renderTermCell(c))
			for _, e := range c.Events {
				line := c.Date.Format("Mon 02") + "  " + e.Name
				if e.Highlight {
					list = append(list, termRedListStyle.Render(line))
				} else {
					list = append(list, termListStyle.Render(line))
				}
				if e.Notes != "" {
					list = append(list, termNoteStyle.Render(e.Notes))
				}
			}
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	if len(list) > 0 {
		rows = append(rows, "")
		rows = append(rows, list...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderTermCell(c Cell) string {
	if !c.InMonth {
		return termCellStyle.Render("")
	}
	label := strconv.Itoa(c.Day())
	if len(c.Events) > 0 {
		label += "*"
	} else {
		label += " "
	}

	switch {
	case c.Today:
		return termTodayStyle.Render(label)
	case hasHighlight(c.Events):
		return termRedStyle.Render(label)
	case len(c.Events) > 0:
		return termEventStyle.Render(label)
	case c.Weekend:
		return termWeekendStyle.Render(label)
	default:
		return termCellStyle.Render(label)
	}
}

func hasHighlight(es []Entry) bool {
	for _, e := range es {
		if e.Highlight {
			return true
		}
	}
	return false
}
