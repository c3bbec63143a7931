// Package slideservice answers slide queries and drives the server's own
// navigation surface. The HTTP API and the MCP server both sit on top of it.
package slideservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/katha/internal/apperr"
	"github.com/starford/katha/internal/broadcast"
	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/index"
	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/parser"
	"github.com/starford/katha/internal/render"
)

// Navigation actions accepted by Step.
const (
	ActionNext = "next"
	ActionPrev = "prev"
)

// SlideListItem is a lightweight item in a list response.
type SlideListItem struct {
	Index    int    `json:"index"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Layout   string `json:"layout"`
	Clicks   int    `json:"clicks"`
	HasNotes bool   `json:"has_notes"`
}

// SlideList is the deck overview.
type SlideList struct {
	Slides   []SlideListItem `json:"slides"`
	Count    int             `json:"count"`
	Checksum string          `json:"checksum"`
}

// SlideDetail is one resolved slide with its rendered slots.
type SlideDetail struct {
	Index    int          `json:"index"`
	Step     int          `json:"step"`
	NotFound bool         `json:"not_found"`
	Total    int          `json:"total"`
	Title    string       `json:"title"`
	Slide    models.Slide `json:"slide"`
	Rendered render.Slide `json:"rendered"`
}

// NotesDetail holds the speaker notes of one slide.
type NotesDetail struct {
	Index int    `json:"index"`
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// Service coordinates the deck, its search index, the renderer and the
// server's navigation surface.
type Service struct {
	deck     *deck.Deck
	db       index.SlideIndex
	renderer *render.Renderer
	surface  *broadcast.Surface
	logger   *slog.Logger
}

// NewService creates a new slide service. surface may be nil for read-only
// use such as the MCP server; nil renderer and logger get defaults.
func NewService(d *deck.Deck, db index.SlideIndex, renderer *render.Renderer, surface *broadcast.Surface, logger *slog.Logger) *Service {
	if renderer == nil {
		renderer = render.New(render.Options{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{deck: d, db: db, renderer: renderer, surface: surface, logger: logger}
}

// ListSlides returns every slide with its title and layout.
func (s *Service) ListSlides(_ context.Context) SlideList {
	snap := s.deck.Snapshot()
	items := make([]SlideListItem, len(snap.Slides))
	for i, sl := range snap.Slides {
		items[i] = SlideListItem{
			Index:    sl.Index(),
			Slug:     sl.Slug,
			Title:    parser.Title(sl),
			Layout:   render.ResolveLayout(sl.Meta.Layout()).Name,
			Clicks:   sl.Meta.Clicks(),
			HasNotes: sl.Notes != "",
		}
	}
	return SlideList{Slides: items, Count: len(items), Checksum: snap.Checksum}
}

// GetSlide resolves loc and renders the slide it lands on. An unknown slug
// lands on the first slide with NotFound set.
func (s *Service) GetSlide(_ context.Context, loc navigation.Location, step int) (*SlideDetail, error) {
	slides := s.deck.Slides()
	if len(slides) == 0 {
		return nil, apperr.ErrEmptyDeck
	}

	st := navigation.Resolve(slides, loc, step, 0)
	if st.NotFound {
		s.logger.Warn("slideservice: slug not found, showing first slide",
			slog.String("slug", loc.Slug))
	}
	slide := slides[st.Index-1]
	rendered, err := s.renderer.RenderSlide(slide)
	if err != nil {
		return nil, err
	}
	return &SlideDetail{
		Index:    st.Index,
		Step:     st.Step,
		NotFound: st.NotFound,
		Total:    len(slides),
		Title:    parser.Title(slide),
		Slide:    slide,
		Rendered: rendered,
	}, nil
}

// Notes returns the speaker notes at loc. Unlike GetSlide, an unknown slug
// is an error.
func (s *Service) Notes(_ context.Context, loc navigation.Location) (*NotesDetail, error) {
	slides := s.deck.Slides()
	if len(slides) == 0 {
		return nil, apperr.ErrEmptyDeck
	}
	st := navigation.Resolve(slides, loc, 0, 0)
	if st.NotFound {
		return nil, fmt.Errorf("slide %q: %w", loc.Slug, apperr.ErrNotFound)
	}
	slide := slides[st.Index-1]
	return &NotesDetail{
		Index: st.Index,
		Slug:  slide.Slug,
		Title: parser.Title(slide),
		Notes: slide.Notes,
	}, nil
}

// TOC returns the table of contents.
func (s *Service) TOC(_ context.Context) []models.TocEntry {
	return parser.TableOfContents(s.deck.Slides())
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// State returns the server surface's current location.
func (s *Service) State(_ context.Context) navigation.State {
	if s.surface == nil {
		return navigation.State{}
	}
	return s.surface.State()
}

// Navigate moves the server surface to a 1-based index and step and
// broadcasts the move to every other surface.
func (s *Service) Navigate(_ context.Context, idx, step int) (navigation.State, error) {
	if err := s.canNavigate(); err != nil {
		return navigation.State{}, err
	}
	if idx < 1 || step < 0 {
		return navigation.State{}, fmt.Errorf("index %d step %d: %w", idx, step, apperr.ErrInvalidLocation)
	}
	return s.surface.Goto(navigation.AtIndex(idx), step), nil
}

// Step applies a next or prev action to the server surface.
func (s *Service) Step(_ context.Context, action string) (navigation.State, error) {
	if err := s.canNavigate(); err != nil {
		return navigation.State{}, err
	}
	switch action {
	case ActionNext:
		return s.surface.Next(), nil
	case ActionPrev:
		return s.surface.Prev(), nil
	default:
		return navigation.State{}, fmt.Errorf("action %q: %w", action, apperr.ErrInvalidLocation)
	}
}

func (s *Service) canNavigate() error {
	if s.surface == nil {
		return fmt.Errorf("navigation unavailable: %w", apperr.ErrNotFound)
	}
	if s.deck.Len() == 0 {
		return apperr.ErrEmptyDeck
	}
	return nil
}

// Checksum returns the checksum of the loaded deck.
func (s *Service) Checksum() string {
	return s.deck.Checksum()
}
