// Package render turns slide markdown into HTML.
package render

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/katha/internal/models"
)

// DefaultTheme is used for slides without a theme key.
const DefaultTheme = "default"

// Options configures a Renderer.
type Options struct {
	// Sanitize strips raw HTML and unsafe attributes with a UGC policy.
	Sanitize bool
	// HardWraps turns single newlines into <br>.
	HardWraps bool
}

// Renderer converts markdown to HTML. It is stateless after construction
// and safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New builds a Renderer with GFM and automatic heading ids.
func New(opts Options) *Renderer {
	var rendererOptions []renderer.Option
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(rendererOptions...),
		),
	}
	if opts.Sanitize {
		r.policy = bluemonday.UGCPolicy()
	}
	return r
}

// Markdown renders src to HTML.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render: markdown: %w", err)
	}
	if r.policy != nil {
		return string(r.policy.SanitizeBytes(buf.Bytes())), nil
	}
	return buf.String(), nil
}

// Slide is a slide ready for display.
type Slide struct {
	Index       int               `json:"index"`
	Slug        string            `json:"slug"`
	Layout      string            `json:"layout"`
	Theme       string            `json:"theme"`
	Class       string            `json:"class,omitempty"`
	Background  string            `json:"background,omitempty"`
	Transition  string            `json:"transition,omitempty"`
	Image       string            `json:"image,omitempty"`
	Clicks      int               `json:"clicks"`
	SlideNumber bool              `json:"slide_number"`
	Slots       map[string]string `json:"slots"`
	Order       []string          `json:"order"`
}

// RenderSlide resolves the slide's layout and renders every non-empty slot.
// Order lists the layout's slots first, then any extra slots by name.
func (r *Renderer) RenderSlide(s models.Slide) (Slide, error) {
	layout := ResolveLayout(s.Meta.Layout())

	theme := s.Meta.Theme()
	if theme == "" {
		theme = DefaultTheme
	}

	out := Slide{
		Index:       s.Index(),
		Slug:        s.Slug,
		Layout:      layout.Name,
		Theme:       theme,
		Class:       s.Meta.Class(),
		Background:  s.Meta.Background(),
		Transition:  s.Meta.Transition(),
		Image:       s.Meta.Image(),
		Clicks:      s.Meta.Clicks(),
		SlideNumber: s.Meta.SlideNumber(),
		Slots:       make(map[string]string, len(s.Slots)),
	}

	for name, content := range s.Slots {
		if content == "" {
			continue
		}
		html, err := r.Markdown(content)
		if err != nil {
			return Slide{}, fmt.Errorf("render: slide %d slot %q: %w", out.Index, name, err)
		}
		out.Slots[name] = html
	}
	out.Order = slotOrder(layout, out.Slots)
	return out, nil
}

func slotOrder(layout Layout, rendered map[string]string) []string {
	order := make([]string, 0, len(rendered))
	placed := map[string]bool{}
	for _, name := range layout.Slots {
		if _, ok := rendered[name]; ok {
			order = append(order, name)
			placed[name] = true
		}
	}
	var extra []string
	for name := range rendered {
		if !placed[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}
