package navigation

import (
	"github.com/starford/katha/internal/models"
)

// State is the resolved navigation position of a surface.
//
// Index is 1-based and clamped to the deck; it is 0 only for an empty deck.
// Step is the reveal cursor, 0 meaning nothing revealed. Direction is the
// sign of the index change from the previous state, for transitions only.
// NotFound is set when a slug location matched no slide and the state fell
// back to the first slide.
type State struct {
	Index     int  `json:"index"`
	Step      int  `json:"step"`
	Direction int  `json:"direction"`
	NotFound  bool `json:"not_found,omitempty"`
}

// SameLocation reports whether s and o point at the same slide and step.
func (s State) SameLocation(o State) bool {
	return s.Index == o.Index && s.Step == o.Step
}

// Resolve maps loc and step onto slides. previous is the index of the
// previously resolved state (0 when there is none) and only feeds Direction.
//
// Numeric locations are clamped into [1, len(slides)]. Slugs match the first
// slide with that slug; an unknown slug falls back to slide 1, step 0, with
// NotFound set. A negative step becomes 0; the step is not bounded by the
// target slide's clicks here, that is left to rendering.
func Resolve(slides []models.Slide, loc Location, step, previous int) State {
	if len(slides) == 0 {
		return State{NotFound: loc.Kind == LocationSlug}
	}
	step = max(step, 0)

	var s State
	switch loc.Kind {
	case LocationNumber:
		s = State{Index: clamp(loc.Number, 1, len(slides)), Step: step}
	case LocationSlug:
		if i := FindSlug(slides, loc.Slug); i > 0 {
			s = State{Index: i, Step: step}
		} else {
			s = State{Index: 1, NotFound: true}
		}
	default:
		s = State{Index: 1}
	}

	s.Direction = direction(previous, s.Index)
	return s
}

// FindSlug returns the 1-based index of the first slide with the given
// slug, or 0 when none matches.
func FindSlug(slides []models.Slide, slug string) int {
	for i, s := range slides {
		if s.Slug == slug {
			return i + 1
		}
	}
	return 0
}

// Next advances one reveal step, or moves to the following slide with the
// step reset once every step of the current slide is revealed. At the last
// slide with nothing left to reveal it returns the state unchanged.
func Next(slides []models.Slide, s State) State {
	if len(slides) == 0 {
		return State{}
	}
	cur := clamp(s.Index, 1, len(slides))
	step := max(s.Step, 0)

	if step < slides[cur-1].Meta.Clicks() {
		return State{Index: cur, Step: step + 1}
	}
	if cur >= len(slides) {
		return State{Index: cur, Step: step}
	}
	return State{Index: cur + 1, Step: 0, Direction: 1}
}

// Prev hides one reveal step, or moves to the preceding slide with the step
// reset to 0. At slide 1 with nothing revealed it returns the state unchanged.
func Prev(slides []models.Slide, s State) State {
	if len(slides) == 0 {
		return State{}
	}
	cur := clamp(s.Index, 1, len(slides))
	step := max(s.Step, 0)

	if step > 0 {
		return State{Index: cur, Step: step - 1}
	}
	if cur <= 1 {
		return State{Index: cur, Step: 0}
	}
	return State{Index: cur - 1, Step: 0, Direction: -1}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func direction(previous, next int) int {
	switch {
	case previous <= 0 || next == previous:
		return 0
	case next > previous:
		return 1
	default:
		return -1
	}
}
