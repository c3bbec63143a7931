// Package patterns holds the delimiters and regular expressions shared by the
// slide parser and the presentation surfaces.
package patterns

import "regexp"

var (
	// SlideDelimiter splits a document into slide chunks. It matches a line
	// that is exactly ---slide--- and consumes the line break after it, so
	// no residue is left on either neighbouring chunk once they are trimmed.
	SlideDelimiter = regexp.MustCompile(`(?m)^---slide---\r?$\n?`)

	// SlotDelimiter splits a slide body into named slots. Group 1 is the name.
	SlotDelimiter = regexp.MustCompile(`(?im)^::([a-z0-9_-]+)::\r?$\n?`)

	// Notes matches HTML comments used as speaker notes. Group 1 is the body.
	Notes = regexp.MustCompile(`<!--([\s\S]*?)-->`)

	// FirstH1 finds a level-1 heading. Group 1 is the heading text.
	FirstH1 = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t]*\r?$`)

	// SlugInvalidRun matches runs of characters not allowed in a slug.
	SlugInvalidRun = regexp.MustCompile(`[^a-z0-9]+`)
)

const (
	// DefaultSlotKey names the slot holding content before the first marker.
	DefaultSlotKey = "default"

	// FrontMatterFence opens and closes a per-slide front-matter block.
	FrontMatterFence = "---"
)

// Key names surfaces bind to next/previous navigation.
const (
	KeyNext = "ArrowRight"
	KeyPrev = "ArrowLeft"
)
