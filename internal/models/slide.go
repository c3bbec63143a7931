// Package models defines the domain types for katha.
package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Slide is one renderable unit of a deck.
type Slide struct {
	Ordinal    int               `json:"ordinal"`
	Slug       string            `json:"slug"`
	Meta       Meta              `json:"meta"`
	RawContent string            `json:"raw_content"`
	Slots      map[string]string `json:"slots"`
	Notes      string            `json:"notes"`
}

// Index returns the 1-based position used in locations.
func (s Slide) Index() int {
	return s.Ordinal + 1
}

// Slot returns the named slot content, or "" when absent.
func (s Slide) Slot(name string) string {
	return s.Slots[name]
}

// Meta is the open key/value mapping parsed from slide front-matter.
// Unknown keys are preserved as-is.
type Meta map[string]any

// Recognised front-matter keys.
const (
	MetaLayout      = "layout"
	MetaID          = "id"
	MetaTheme       = "theme"
	MetaTitle       = "title"
	MetaBackground  = "background"
	MetaClass       = "class"
	MetaClicks      = "clicks"
	MetaTransition  = "transition"
	MetaSlideNumber = "slideNumber"
	MetaImage       = "image"
)

// String returns the value under key formatted as a string. Scalars other
// than strings are formatted with their default representation.
func (m Meta) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int, int64, float64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func (m Meta) ID() string         { return m.String(MetaID) }
func (m Meta) Layout() string     { return m.String(MetaLayout) }
func (m Meta) Theme() string      { return m.String(MetaTheme) }
func (m Meta) Title() string      { return m.String(MetaTitle) }
func (m Meta) Background() string { return m.String(MetaBackground) }
func (m Meta) Class() string      { return m.String(MetaClass) }
func (m Meta) Transition() string { return m.String(MetaTransition) }

// Image is the picture used by the image-left and image-right layouts.
func (m Meta) Image() string { return m.String(MetaImage) }

// Clicks returns the declared number of sub-steps. Missing, malformed or
// negative values count as 0.
func (m Meta) Clicks() int {
	var n int
	switch v := m[MetaClicks].(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case uint64:
		if v > math.MaxInt32 {
			return math.MaxInt32
		}
		n = int(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		n = parsed
	}
	if n < 0 {
		return 0
	}
	return n
}

// SlideNumber reports whether the slide counter should be shown. Defaults
// to true; accepts YAML booleans and the strings "false", "no", "off", "0".
func (m Meta) SlideNumber() bool {
	switch v := m[MetaSlideNumber].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "false", "no", "off", "0":
			return false
		}
	}
	return true
}

// TocEntry is one line in a deck's table of contents.
type TocEntry struct {
	Index int    `json:"index"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
}
