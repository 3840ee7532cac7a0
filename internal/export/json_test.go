package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodcal/internal/schedule"
)

func TestWriteJSON(t *testing.T) {
	res := schedule.Generate(schedule.ParseLines("Board Pack - quarterly\nMystery - ???"), 2026)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, 2026, res.Events, res.Unrecognized))

	var doc Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 2026, doc.Year)
	assert.Equal(t, 4, doc.Count)
	assert.Equal(t, []string{"Mystery"}, doc.Unrecognized)
	require.Len(t, doc.Events, 4)
	assert.Equal(t, Event{
		ID:       "0-3",
		RuleName: "Board Pack",
		Date:     "2026-04-01",
		Weekday:  "Wednesday",
		Month:    4,
		Year:     2026,
		Notes:    "quarterly",
	}, doc.Events[1])
}
