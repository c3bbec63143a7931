package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/katha/internal/broadcast"
	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/index"
	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/render"
	"github.com/starford/katha/internal/slideservice"
	"github.com/starford/katha/internal/testutil"
)

type testEnv struct {
	router http.Handler
	bus    *broadcast.Bus
	deck   *deck.Deck
	dir    string
	logs   *bytes.Buffer
}

// newTestEnv sets up a deck dir, SQLite index, bus, server surface and
// router. A non-empty authToken enables token mode.
func newTestEnv(t *testing.T, source, authToken string) *testEnv {
	t.Helper()
	logger := testutil.QuietLogger()

	dir, store := testutil.TestDeckDir(t, source)
	d := deck.New(store, "slides.md", deck.WithLogger(logger))
	require.NoError(t, d.Load())

	db := testutil.TestDB(t)
	_, err := index.Sync(db, d.Snapshot(), logger)
	require.NoError(t, err)

	bus := broadcast.NewBus(16, logger)
	t.Cleanup(bus.Close)

	surface := broadcast.NewSurface("server", bus, navigation.NewNavigator(logger), logger)
	t.Cleanup(surface.Close)
	surface.Load(d.Slides())

	logs := &bytes.Buffer{}
	svcLogger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

	svc := slideservice.NewService(d, db, render.New(render.Options{}), surface, svcLogger)
	router := NewRouter(svc, RouterConfig{AuthEnabled: authToken != "", Token: authToken})
	return &testEnv{router: router, bus: bus, deck: d, dir: dir, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestListSlides(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodGet, "/slides", nil)
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[SlideListResponse](t, w)
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, env.deck.Checksum(), list.Checksum)
	require.Len(t, list.Slides, 3)
	assert.Equal(t, "Welcome", list.Slides[0].Title)
	assert.Equal(t, render.LayoutTitle, list.Slides[0].Layout)
	assert.True(t, list.Slides[0].HasNotes)
	assert.Equal(t, "agenda", list.Slides[1].Slug)
	assert.Equal(t, 2, list.Slides[1].Clicks)
	assert.Equal(t, render.LayoutSplit, list.Slides[2].Layout)
}

func TestGetSlide(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	tests := []struct {
		name     string
		target   string
		index    int
		step     int
		notFound bool
	}{
		{"by number", "/slides/2", 2, 0, false},
		{"by slug with step", "/slides/agenda?step=1", 2, 1, false},
		{"clamped high", "/slides/99", 3, 0, false},
		{"clamped low", "/slides/0", 1, 0, false},
		{"unknown slug", "/slides/nope", 1, 0, true},
		{"negative step", "/slides/1?step=-4", 1, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			d := decode[SlideDetail](t, w)
			assert.Equal(t, tt.index, d.Index)
			assert.Equal(t, tt.step, d.Step)
			assert.Equal(t, tt.notFound, d.NotFound)
			assert.Equal(t, 3, d.Total)
			assert.Equal(t, tt.index, d.Rendered.Index)
		})
	}
}

func TestGetSlide_UnknownSlugLogsWarning(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodGet, "/slides/agenda", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.logs.String())

	w = env.do(t, http.MethodGet, "/slides/missing-slide", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[SlideDetail](t, w).NotFound)

	logged := env.logs.String()
	assert.Contains(t, logged, "level=WARN")
	assert.Contains(t, logged, "slug=missing-slide")
}

func TestGetSlide_Rendered(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	d := decode[SlideDetail](t, env.do(t, http.MethodGet, "/slides/3", nil))
	assert.Equal(t, "Compare", d.Title)
	assert.Equal(t, render.LayoutSplit, d.Rendered.Layout)
	assert.Contains(t, d.Rendered.Slots["default"], `<h1 id="compare">Compare</h1>`)
	assert.Contains(t, d.Rendered.Slots["right"], "Right side")
	assert.Equal(t, "Right side", d.Slide.Slots["right"])
}

func TestGetSlide_EmptyDeck(t *testing.T) {
	env := newTestEnv(t, "\n", "")

	w := env.do(t, http.MethodGet, "/slides/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "deck has no slides")

	list := decode[SlideListResponse](t, env.do(t, http.MethodGet, "/slides", nil))
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Slides)
}

func TestTOC(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodGet, "/toc", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Entries []models.TocEntry `json:"entries"`
	}](t, w)
	require.Len(t, body.Entries, 3)
	assert.Equal(t, models.TocEntry{Index: 2, Slug: "agenda", Title: "Agenda"}, body.Entries[1])
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodGet, "/search?q=navigation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[SearchResponse](t, w)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 2, res.Results[0].Index)
	assert.Equal(t, "agenda", res.Results[0].Slug)

	w = env.do(t, http.MethodGet, "/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNavigate(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	received := make(chan broadcast.Message, 8)
	defer env.bus.Subscribe("audience", func(m broadcast.Message) { received <- m })()

	w := env.do(t, http.MethodPost, "/navigate", map[string]any{"index": 2, "step": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	st := decode[StateResponse](t, w)
	assert.Equal(t, 2, st.Index)
	assert.Equal(t, 1, st.Step)

	select {
	case m := <-received:
		assert.Equal(t, broadcast.Navigate(2, 1), m)
	case <-time.After(time.Second):
		t.Fatal("navigation not broadcast")
	}

	w = env.do(t, http.MethodPost, "/navigate", map[string]any{"action": "next"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StateResponse{Index: 2, Step: 2, Checksum: env.deck.Checksum()}, decode[StateResponse](t, w))

	state := decode[StateResponse](t, env.do(t, http.MethodGet, "/state", nil))
	assert.Equal(t, 2, state.Index)
	assert.Equal(t, 2, state.Step)
}

func TestNavigate_Validation(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	bodies := []any{
		map[string]any{},
		map[string]any{"index": 0},
		map[string]any{"index": 1, "step": -1},
		map[string]any{"action": "jump"},
		map[string]any{"action": "Next"},
		map[string]any{"action": "next", "index": 2},
	}
	for _, b := range bodies {
		w := env.do(t, http.MethodPost, "/navigate", b)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", b)
	}

	req := httptest.NewRequest(http.MethodPost, "/navigate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNavigate_ClampsIndex(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodPost, "/navigate", map[string]any{"index": 50})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[StateResponse](t, w).Index)
}

func TestNavigate_EmptyDeck(t *testing.T) {
	env := newTestEnv(t, " ", "")

	w := env.do(t, http.MethodPost, "/navigate", map[string]any{"action": "next"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuth_TokenMode(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "secret")
	body := map[string]any{"index": 2}

	w := env.do(t, http.MethodPost, "/navigate", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/navigate", body, "Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/navigate", body, "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/navigate?token=secret", body)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/slides", nil)
	assert.Equal(t, http.StatusOK, w.Code, "reads stay open in token mode")
}

func TestAuth_DisabledMode(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")

	w := env.do(t, http.MethodPost, "/navigate", map[string]any{"index": 2}, "Authorization", "Bearer anything")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAssets(t *testing.T) {
	env := newTestEnv(t, testutil.SampleDeck, "")
	require.NoError(t, os.MkdirAll(filepath.Join(env.dir, "img"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "img", "logo.svg"), []byte("<svg/>"), 0o644))

	store := env.deck.Store()
	r := chi.NewRouter()
	r.Handle("/assets/*", NewAssetHandler(store, env.deck.File()))

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	w := get("/assets/img/logo.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<svg/>", w.Body.String())

	assert.Equal(t, http.StatusNotFound, get("/assets/missing.png").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/slides.md").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/img/../slides.md").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/./slides.md").Code)
	assert.Equal(t, http.StatusNotFound, get("/assets/img").Code)
	assert.NotEqual(t, http.StatusOK, get("/assets/..%2f..%2fetc%2fpasswd").Code)
}
