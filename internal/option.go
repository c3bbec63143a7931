package internal

import (
	"log/slog"

	"github.com/starford/katha/internal/deck"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	logger *slog.Logger
	deck   *deck.Deck
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithDeck injects an already constructed deck, for example one built with
// deck.FromString. A deck with a backing store is loaded again on start;
// one without has no watcher and no asset route.
func WithDeck(d *deck.Deck) Option {
	return func(a *application) {
		a.deck = d
	}
}
