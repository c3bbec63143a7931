package broadcast

import (
	"log/slog"
	"sync"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/navigation"
)

// Surface is one participant in a synchronized presentation: a navigator
// bound to a Port. Local moves that change the location are published;
// NAVIGATE messages from other surfaces are applied and never re-published.
type Surface struct {
	id     string
	port   Port
	logger *slog.Logger

	mu       sync.Mutex
	nav      *navigation.Navigator
	onChange func(navigation.State)

	cancel    func()
	closeOnce sync.Once
}

// NewSurface subscribes a surface named id to port.
func NewSurface(id string, port Port, nav *navigation.Navigator, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	if nav == nil {
		nav = navigation.NewNavigator(logger)
	}
	s := &Surface{
		id:     id,
		port:   port,
		nav:    nav,
		logger: logger.With(slog.String("surface", id)),
	}
	s.cancel = port.Subscribe(id, s.receive)
	return s
}

// ID returns the surface name used as publish origin.
func (s *Surface) ID() string { return s.id }

// OnChange registers fn to run after a remote message moved this surface.
func (s *Surface) OnChange(fn func(navigation.State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load replaces the slide list, keeping the current location where possible.
// Reloads are local and are not published.
func (s *Surface) Load(slides []models.Slide) navigation.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Load(slides)
}

// Goto moves to loc and publishes the new location if it changed.
func (s *Surface) Goto(loc navigation.Location, step int) navigation.State {
	return s.move(func(n *navigation.Navigator) navigation.State { return n.Goto(loc, step) })
}

// Next advances one step or slide.
func (s *Surface) Next() navigation.State {
	return s.move((*navigation.Navigator).Next)
}

// Prev goes back one step or slide.
func (s *Surface) Prev() navigation.State {
	return s.move((*navigation.Navigator).Prev)
}

func (s *Surface) move(fn func(*navigation.Navigator) navigation.State) navigation.State {
	s.mu.Lock()
	before := s.nav.State()
	after := fn(s.nav)
	s.mu.Unlock()

	if !after.SameLocation(before) {
		s.port.Publish(s.id, Navigate(after.Index, after.Step))
	}
	return after
}

// State returns the current navigation state.
func (s *Surface) State() navigation.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.State()
}

// Current returns the slide at the current index.
func (s *Surface) Current() (models.Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

func (s *Surface) receive(msg Message) {
	if msg.Type != TypeNavigate {
		return
	}

	s.mu.Lock()
	st, changed := s.nav.Apply(msg.Index, msg.Step)
	fn := s.onChange
	s.mu.Unlock()

	if !changed {
		return
	}
	s.logger.Debug("broadcast: applied remote navigation",
		slog.Int("index", st.Index),
		slog.Int("step", st.Step))
	if fn != nil {
		fn(st)
	}
}

// Close releases the subscription. Safe to call more than once.
func (s *Surface) Close() {
	s.closeOnce.Do(s.cancel)
}
