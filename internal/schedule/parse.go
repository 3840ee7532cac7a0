package schedule

import (
	"strings"

	"prodcal/internal/model"
)

// Separator splits a line into name and rule text.
const Separator = " - "

// ParseLines splits raw input into RawLines, skipping blank lines.
func ParseLines(text string) []model.RawLine {
	var out []model.RawLine
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out = append(out, ParseLine(raw))
	}
	return out
}

// ParseLine splits one line at the first Separator. Everything after it,
// later separators included, is the rule text. A line without a separator
// has an empty rule.
func ParseLine(line string) model.RawLine {
	name, rest, found := strings.Cut(line, Separator)
	var rule string
	if found {
		rule = strings.TrimSpace(rest)
	}
	return model.RawLine{
		Name:     strings.TrimSpace(name),
		RuleText: rule,
		Notes:    rule,
	}
}
