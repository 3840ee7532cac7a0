package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/schedule"
)

func TestRenderTerminal(t *testing.T) {
	events := schedule.GenerateEvents(schedule.DefaultRulesText, 2026)
	var buf bytes.Buffer
	require.NoError(t, RenderTerminal(&buf, 2026, events, Options{WeekStart: time.Monday}))
	out := buf.String()

	for m := time.January; m <= time.December; m++ {
		assert.Contains(t, out, m.String()+" 2026")
	}
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, "Thu 01  NA Monthend")
	assert.Contains(t, out, "Fri 08  EU cost corrections")
	assert.Contains(t, out, "120 events in 2026")
	assert.Contains(t, out, "1*")
}

func TestRenderTerminalEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTerminal(&buf, 2026, nil, Options{}))
	assert.Contains(t, buf.String(), "0 events in 2026")
	assert.False(t, strings.Contains(buf.String(), "*"))
}
