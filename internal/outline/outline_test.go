package outline

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/katha/internal/parser"
)

const deckSource = "---\ntitle: Welcome\nlayout: center\n---\n# Katha\n<!-- greet the **room** -->\n" +
	"---slide---\n---\nid: agenda\nclicks: 2\n---\n# Agenda\n" +
	"---slide---\nno title"

func TestRows(t *testing.T) {
	rows := Rows(parser.Parse(deckSource))

	require.Len(t, rows, 3)
	assert.Equal(t, Row{Index: 1, Slug: "katha", Layout: "title", Title: "Welcome", Notes: "greet the **room**"}, rows[0])
	assert.Equal(t, Row{Index: 2, Slug: "agenda", Layout: "default", Clicks: 2, Title: "Agenda"}, rows[1])
	assert.Equal(t, "3", rows[2].Slug)
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, parser.Parse(deckSource), Options{}))

	out := buf.String()
	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "agenda")
	assert.Contains(t, out, "Welcome")
	assert.NotContains(t, out, "room")
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 4)
}

func TestWrite_Notes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, parser.Parse(deckSource), Options{Notes: true, Style: "notty"}))

	out := buf.String()
	assert.Contains(t, out, "1. katha - Welcome")
	assert.Contains(t, out, "room")
	assert.NotContains(t, out, "2. agenda", "slides without notes are skipped")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, parser.Parse(deckSource), Options{JSON: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	var row Row
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, "katha", row.Slug)
	assert.Empty(t, row.Notes)
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, parser.Parse(""), Options{}))
	assert.Equal(t, "No slides found\n", buf.String())
}
