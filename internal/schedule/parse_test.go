package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/model"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.RawLine
	}{
		{
			name: "name and rule",
			line: "NA Monthend - First working day of every month",
			want: model.RawLine{Name: "NA Monthend", RuleText: "First working day of every month", Notes: "First working day of every month"},
		},
		{
			name: "splits at first separator only",
			line: "Close - books - 31st of December",
			want: model.RawLine{Name: "Close", RuleText: "books - 31st of December", Notes: "books - 31st of December"},
		},
		{
			name: "no separator",
			line: "Mystery Task",
			want: model.RawLine{Name: "Mystery Task"},
		},
		{
			name: "hyphen without spaces is not a separator",
			line: "Go-live-2026-03-15",
			want: model.RawLine{Name: "Go-live-2026-03-15"},
		},
		{
			name: "trims whitespace and carriage return",
			line: "  Payroll  -  every Friday \r",
			want: model.RawLine{Name: "Payroll", RuleText: "every Friday", Notes: "every Friday"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line))
		})
	}
}

func TestParseLinesSkipsBlank(t *testing.T) {
	lines := ParseLines("\nA - daily\n   \r\nB - weekly\n\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].Name)
	assert.Equal(t, "B", lines[1].Name)
	assert.Equal(t, "weekly", lines[1].RuleText)
}

func TestParseLinesEmpty(t *testing.T) {
	assert.Empty(t, ParseLines(""))
}
