// Package deck owns the parsed slide list of one deck file and reloads it
// when the file changes.
package deck

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/parser"
	"github.com/starford/katha/internal/storage"
)

// DefaultFile is the deck file name used when none is configured.
const DefaultFile = "slides.md"

// ErrNoSource is returned by Reload and Watch for decks built from a string.
var ErrNoSource = errors.New("deck: no backing file")

// Snapshot is the state handed to reload listeners.
type Snapshot struct {
	Slides   []models.Slide
	Checksum string
}

// Option configures a Deck.
type Option func(*Deck)

// WithLogger sets the logger used by the deck and its parser.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deck) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithParser overrides the parser.
func WithParser(p *parser.Parser) Option {
	return func(d *Deck) {
		if p != nil {
			d.parser = p
		}
	}
}

// Deck holds the current slides of a deck. It is safe for concurrent use:
// HTTP handlers read while the watcher reloads.
type Deck struct {
	store  storage.Provider
	file   string
	parser *parser.Parser
	logger *slog.Logger

	mu        sync.RWMutex
	slides    []models.Slide
	checksum  string
	listeners []func(Snapshot)
}

// New creates a deck backed by file inside store. Call Load before use.
func New(store storage.Provider, file string, opts ...Option) *Deck {
	if file == "" {
		file = DefaultFile
	}
	d := newDeck(opts)
	d.store = store
	d.file = file
	return d
}

// FromString creates a deck from raw markdown with no backing file.
func FromString(raw string, opts ...Option) *Deck {
	d := newDeck(opts)
	d.swap([]byte(raw))
	return d
}

func newDeck(opts []Option) *Deck {
	d := &Deck{logger: slog.Default(), slides: []models.Slide{}}
	for _, o := range opts {
		o(d)
	}
	if d.parser == nil {
		d.parser = parser.New(d.logger)
	}
	return d
}

// Load reads and parses the deck file unconditionally.
func (d *Deck) Load() error {
	data, err := d.read()
	if err != nil {
		return err
	}
	d.swap(data)
	d.logger.Info("deck: loaded",
		slog.String("file", d.file),
		slog.Int("slides", d.Len()))
	return nil
}

// Reload re-reads the deck file. When the content checksum is unchanged it
// returns false and keeps the current slides; otherwise it re-parses and
// notifies every OnReload listener.
func (d *Deck) Reload() (bool, error) {
	data, err := d.read()
	if err != nil {
		return false, err
	}
	if storage.Checksum(data) == d.Checksum() {
		return false, nil
	}

	snap := d.swap(data)
	d.logger.Info("deck: reloaded",
		slog.String("file", d.file),
		slog.Int("slides", len(snap.Slides)),
		slog.String("checksum", snap.Checksum))

	d.mu.RLock()
	listeners := slices.Clone(d.listeners)
	d.mu.RUnlock()
	for _, fn := range listeners {
		fn(snap)
	}
	return true, nil
}

func (d *Deck) read() ([]byte, error) {
	if d.store == nil {
		return nil, ErrNoSource
	}
	data, err := d.store.Read(d.file)
	if err != nil {
		return nil, fmt.Errorf("deck: %w", err)
	}
	return data, nil
}

func (d *Deck) swap(data []byte) Snapshot {
	slides := d.parser.Parse(string(data))
	sum := storage.Checksum(data)

	d.mu.Lock()
	d.slides = slides
	d.checksum = sum
	d.mu.Unlock()

	return Snapshot{Slides: cloneSlides(slides), Checksum: sum}
}

// OnReload registers fn to be called after every content change.
func (d *Deck) OnReload(fn func(Snapshot)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// Slides returns a copy of the current slide list.
func (d *Deck) Slides() []models.Slide {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return cloneSlides(d.slides)
}

// Snapshot returns the current slides and checksum together.
func (d *Deck) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Snapshot{Slides: cloneSlides(d.slides), Checksum: d.checksum}
}

// Checksum returns the SHA-256 of the last loaded content.
func (d *Deck) Checksum() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.checksum
}

// Len returns the number of slides.
func (d *Deck) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.slides)
}

// File returns the deck file name relative to the store root.
func (d *Deck) File() string { return d.file }

// Store returns the backing provider, nil for string decks.
func (d *Deck) Store() storage.Provider { return d.store }

// Slides are shared read-only; only the outer slice is copied.
func cloneSlides(in []models.Slide) []models.Slide {
	out := make([]models.Slide, len(in))
	copy(out, in)
	return out
}
