package parser

import (
	"strings"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/patterns"
)

// TableOfContents lists the slides that carry a title, either from the
// title front-matter key or from their first H1.
func TableOfContents(slides []models.Slide) []models.TocEntry {
	out := make([]models.TocEntry, 0, len(slides))
	for _, s := range slides {
		title := Title(s)
		if title == "" {
			continue
		}
		out = append(out, models.TocEntry{Index: s.Index(), Slug: s.Slug, Title: title})
	}
	return out
}

// Title returns the front-matter title if present, otherwise the text of
// the first H1, otherwise empty string.
func Title(s models.Slide) string {
	if t := s.Meta.Title(); t != "" {
		return t
	}
	if m := patterns.FirstH1.FindStringSubmatch(s.RawContent); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
