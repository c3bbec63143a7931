// Package outline prints a deck overview to a terminal.
package outline

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/parser"
	"github.com/starford/katha/internal/render"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	notesStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
)

// Options controls Write.
type Options struct {
	// Notes prints each slide's speaker notes below the table.
	Notes bool
	// JSON writes one JSON object per slide instead of a table.
	JSON bool
	// Style is a glamour style name for notes; defaults to "auto".
	Style string
	// Width wraps rendered notes; defaults to 80.
	Width int
}

// Row is one line of the outline.
type Row struct {
	Index  int    `json:"index"`
	Slug   string `json:"slug"`
	Layout string `json:"layout"`
	Clicks int    `json:"clicks"`
	Title  string `json:"title"`
	Notes  string `json:"notes,omitempty"`
}

// Rows builds the outline rows for slides.
func Rows(slides []models.Slide) []Row {
	rows := make([]Row, len(slides))
	for i, s := range slides {
		rows[i] = Row{
			Index:  s.Index(),
			Slug:   s.Slug,
			Layout: render.ResolveLayout(s.Meta.Layout()).Name,
			Clicks: s.Meta.Clicks(),
			Title:  parser.Title(s),
			Notes:  s.Notes,
		}
	}
	return rows
}

// Write prints the outline of slides to out.
func Write(out io.Writer, slides []models.Slide, opts Options) error {
	rows := Rows(slides)

	if opts.JSON {
		enc := json.NewEncoder(out)
		for _, r := range rows {
			if !opts.Notes {
				r.Notes = ""
			}
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("outline: encode slide %d: %w", r.Index, err)
			}
		}
		return nil
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No slides found")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, headerStyle.Render("#")+"\t"+
		headerStyle.Render("SLUG")+"\t"+
		headerStyle.Render("LAYOUT")+"\t"+
		headerStyle.Render("CLICKS")+"\t"+
		headerStyle.Render("TITLE"))
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index, r.Slug, r.Layout, clicks(r.Clicks), r.Title)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !opts.Notes {
		return nil
	}
	return writeNotes(out, rows, opts)
}

func clicks(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

func writeNotes(out io.Writer, rows []Row, opts Options) error {
	style := opts.Style
	if style == "" {
		style = "auto"
	}
	width := opts.Width
	if width <= 0 {
		width = 80
	}

	var r *glamour.TermRenderer
	var err error
	if style == "auto" {
		r, err = glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	} else {
		r, err = glamour.NewTermRenderer(glamour.WithStylePath(style), glamour.WithWordWrap(width))
	}
	if err != nil {
		return fmt.Errorf("outline: notes renderer: %w", err)
	}

	for _, row := range rows {
		if row.Notes == "" {
			continue
		}
		label := fmt.Sprintf("%d. %s", row.Index, row.Slug)
		if row.Title != "" {
			label += " - " + row.Title
		}
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, headerStyle.Render(label))

		rendered, err := r.Render(row.Notes)
		if err != nil {
			// Plain text still reads fine when markdown rendering fails.
			rendered = notesStyle.Render(row.Notes)
		}
		_, _ = fmt.Fprintln(out, strings.TrimRight(rendered, "\n"))
	}
	return nil
}
