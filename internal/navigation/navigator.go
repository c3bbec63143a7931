package navigation

import (
	"log/slog"

	"github.com/starford/katha/internal/models"
)

// Navigator holds the navigation state of one surface. It is not safe for
// concurrent use; every surface owns its own Navigator.
type Navigator struct {
	slides []models.Slide
	state  State
	logger *slog.Logger
}

// NewNavigator returns a Navigator over an empty deck.
func NewNavigator(logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{logger: logger}
}

// Load swaps in a freshly parsed deck and clamps the current position into
// it. The step is kept so a reload does not hide revealed content.
func (n *Navigator) Load(slides []models.Slide) State {
	n.slides = slides
	switch {
	case len(slides) == 0:
		n.state = State{}
	case n.state.Index == 0:
		n.state = State{Index: 1}
	default:
		n.state = State{Index: clamp(n.state.Index, 1, len(slides)), Step: n.state.Step}
	}
	return n.state
}

// Goto resolves loc and step and makes the result current.
func (n *Navigator) Goto(loc Location, step int) State {
	s := Resolve(n.slides, loc, step, n.state.Index)
	if s.NotFound {
		n.logger.Warn("navigation: slug not found, showing first slide",
			slog.String("slug", loc.Slug))
	}
	n.state = s
	return s
}

// Next advances by one step or slide.
func (n *Navigator) Next() State {
	n.state = Next(n.slides, n.state)
	return n.state
}

// Prev goes back by one step or slide.
func (n *Navigator) Prev() State {
	n.state = Prev(n.slides, n.state)
	return n.state
}

// Apply moves to a numeric index and step received from another surface.
// It reports false, leaving the state untouched, when the target equals the
// current location, which makes repeated deliveries harmless.
func (n *Navigator) Apply(index, step int) (State, bool) {
	target := Resolve(n.slides, AtIndex(index), step, n.state.Index)
	if target.SameLocation(n.state) {
		return n.state, false
	}
	n.state = target
	return target, true
}

// State returns the current state.
func (n *Navigator) State() State {
	return n.state
}

// Current returns the slide at the current index.
func (n *Navigator) Current() (models.Slide, bool) {
	if n.state.Index < 1 || n.state.Index > len(n.slides) {
		return models.Slide{}, false
	}
	return n.slides[n.state.Index-1], true
}

// Len returns the number of loaded slides.
func (n *Navigator) Len() int {
	return len(n.slides)
}
