package render

import "strings"

// Layout names.
const (
	LayoutDefault    = "default"
	LayoutTitle      = "title"
	LayoutSplit      = "split"
	LayoutQuote      = "quote"
	LayoutSection    = "section"
	LayoutImageLeft  = "image-left"
	LayoutImageRight = "image-right"
)

// Layout describes how a slide's slots are arranged. Slots lists the slot
// names the layout places, in reading order.
type Layout struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

var layouts = map[string]Layout{
	LayoutDefault:    {Name: LayoutDefault, Slots: []string{"default"}},
	LayoutTitle:      {Name: LayoutTitle, Slots: []string{"default"}},
	LayoutSplit:      {Name: LayoutSplit, Slots: []string{"default", "right"}},
	LayoutQuote:      {Name: LayoutQuote, Slots: []string{"default"}},
	LayoutSection:    {Name: LayoutSection, Slots: []string{"default"}},
	LayoutImageLeft:  {Name: LayoutImageLeft, Slots: []string{"left", "default"}},
	LayoutImageRight: {Name: LayoutImageRight, Slots: []string{"default", "right"}},
}

var aliases = map[string]string{
	"two-cols":  LayoutSplit,
	"center":    LayoutTitle,
	"img-left":  LayoutImageLeft,
	"img-right": LayoutImageRight,
}

// ResolveLayout maps a front-matter layout name, case-insensitively and
// through aliases, to a registered layout. Unknown names get the default.
func ResolveLayout(name string) Layout {
	key := strings.ToLower(strings.TrimSpace(name))
	if target, ok := aliases[key]; ok {
		key = target
	}
	if l, ok := layouts[key]; ok {
		return l
	}
	return layouts[LayoutDefault]
}

// Layouts returns every registered layout name followed by the aliases.
func Layouts() []string {
	return []string{
		LayoutDefault, LayoutTitle, LayoutSplit, LayoutQuote, LayoutSection,
		LayoutImageLeft, LayoutImageRight,
		"two-cols", "center", "img-left", "img-right",
	}
}
