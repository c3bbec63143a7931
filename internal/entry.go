// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/katha/internal/api"
	"github.com/starford/katha/internal/broadcast"
	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/index"
	"github.com/starford/katha/internal/mcpserver"
	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/render"
	"github.com/starford/katha/internal/slideservice"
	"github.com/starford/katha/internal/storage"
)

// Version is reported by the CLI and the MCP server. Set at build time.
var Version = "dev"

// ServerSurfaceID is the bus id of the surface owned by the server itself.
const ServerSurfaceID = "server"

// NewLogger builds the slog logger described by cfg, writing to w.
func NewLogger(w io.Writer, cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// runtime holds the components shared by the HTTP and MCP front ends.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	deck    *deck.Deck
	db      *index.DB
	bus     *broadcast.Bus
	surface *broadcast.Surface
	svc     *slideservice.Service
}

func newRuntime(app *application, logOut io.Writer) (*runtime, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = NewLogger(logOut, cfg.App)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("deck_path", cfg.Deck.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	d := app.deck
	if d == nil {
		store, err := storage.NewFS(cfg.Deck.Dir())
		if err != nil {
			return nil, fmt.Errorf("init storage: %w", err)
		}
		d = deck.New(store, cfg.Deck.File(), deck.WithLogger(logger))
	}
	if d.Store() != nil {
		if err := d.Load(); err != nil {
			return nil, fmt.Errorf("load deck: %w", err)
		}
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if _, err := index.Sync(db, d.Snapshot(), logger); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	bus := broadcast.NewBus(cfg.Sync.Buffer, logger)
	surface := broadcast.NewSurface(ServerSurfaceID, bus, navigation.NewNavigator(logger), logger)
	surface.Load(d.Slides())

	d.OnReload(index.Listener(db, logger))
	d.OnReload(func(snap deck.Snapshot) {
		state := surface.Load(snap.Slides)
		bus.Publish(surface.ID(), broadcast.Reload(snap.Checksum))
		logger.Info("deck reload broadcast",
			slog.String("checksum", snap.Checksum),
			slog.Int("index", state.Index))
	})

	renderer := render.New(render.Options{
		Sanitize:  cfg.Render.Sanitize,
		HardWraps: cfg.Render.HardWraps,
	})

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		deck:    d,
		db:      db,
		bus:     bus,
		surface: surface,
		svc:     slideservice.NewService(d, db, renderer, surface, logger),
	}, nil
}

// watch runs the deck watcher until ctx is done. It is a no-op when
// watching is off or the deck has no backing file.
func (rt *runtime) watch(ctx context.Context) error {
	if !rt.cfg.Deck.Watch || rt.deck.Store() == nil {
		return nil
	}
	err := deck.Watch(ctx, rt.deck, deck.WatchOptions{
		Patterns: rt.cfg.Deck.WatchPatterns,
		Debounce: rt.cfg.Deck.Debounce,
	})
	if err != nil {
		return fmt.Errorf("watch deck: %w", err)
	}
	return nil
}

func (rt *runtime) close() {
	rt.surface.Close()
	rt.bus.Close()
	if err := rt.db.Close(); err != nil {
		rt.logger.Warn("close index", slog.String("error", err.Error()))
	}
}

// handler builds the top-level chi router.
func (rt *runtime) handler() http.Handler {
	auth := api.AuthMiddleware(rt.cfg.Auth.AuthEnabled(), rt.cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, map[string]any{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, map[string]any{
			"status":      "ok",
			"slides":      rt.deck.Len(),
			"checksum":    rt.deck.Checksum(),
			"subscribers": rt.bus.SubscriberCount(),
		})
	})

	r.Mount("/api", api.NewRouter(rt.svc, api.RouterConfig{
		AuthEnabled: rt.cfg.Auth.AuthEnabled(),
		Token:       rt.cfg.Auth.Token,
		Events:      broadcast.NewSSEHandler(rt.bus, rt.logger),
	}))

	r.With(auth).Get("/ws", broadcast.NewWebSocketHandler(rt.bus, rt.logger).ServeHTTP)

	if store := rt.deck.Store(); store != nil {
		r.Handle("/assets/*", api.NewAssetHandler(store, rt.deck.File()))
	}

	return r
}

func writeHealth(w http.ResponseWriter, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// Run starts the HTTP server with the given options and blocks until ctx is
// cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	logger := rt.logger

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           rt.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Int("slides", rt.deck.Len()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rt.watch(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the deck tools over stdio until stdin closes. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rt.watch(gCtx)
	})
	g.Go(func() error {
		defer cancel()
		rt.logger.Info("MCP server starting on stdio", slog.Int("slides", rt.deck.Len()))
		return mcpserver.New(rt.svc, Version).ServeStdio()
	})

	return g.Wait()
}
