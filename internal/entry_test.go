package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/katha/internal/broadcast"
	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/navigation"
	"github.com/starford/katha/internal/testutil"
)

func testRuntime(t *testing.T, mutate func(*Config)) (*runtime, string) {
	t.Helper()
	dir, _ := testutil.TestDeckDir(t, testutil.SampleDeck)

	cfg := NewDefaultConfig()
	cfg.Deck.Path = filepath.Join(dir, "slides.md")
	cfg.Deck.Watch = false
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	rt, err := newRuntime(&application{config: cfg, logger: testutil.QuietLogger()}, io.Discard)
	require.NoError(t, err)
	t.Cleanup(rt.close)
	return rt, dir
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestNewRuntime_RequiresConfig(t *testing.T) {
	_, err := newRuntime(&application{}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNewRuntime_MissingDeckFile(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Deck.Path = filepath.Join(t.TempDir(), "absent.md")

	_, err := newRuntime(&application{config: cfg, logger: testutil.QuietLogger()}, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load deck")
}

func TestRuntime_Health(t *testing.T) {
	rt, _ := testRuntime(t, nil)
	h := rt.handler()

	w := get(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(t, h, "/health/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["slides"])
	assert.Equal(t, rt.deck.Checksum(), body["checksum"])
}

func TestRuntime_APIMounted(t *testing.T) {
	rt, _ := testRuntime(t, nil)

	w := get(t, rt.handler(), "/api/slides")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":3`)

	w = get(t, rt.handler(), "/api/slides/agenda")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"index":2`)
}

func TestRuntime_InitialIndexSync(t *testing.T) {
	rt, _ := testRuntime(t, nil)

	n, err := rt.db.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	sum, err := rt.db.Checksum()
	require.NoError(t, err)
	assert.Equal(t, rt.deck.Checksum(), sum)
}

func TestRuntime_ReloadUpdatesIndexAndBroadcasts(t *testing.T) {
	rt, dir := testRuntime(t, nil)

	got := make(chan broadcast.Message, 4)
	cancel := rt.bus.Subscribe("viewer", func(m broadcast.Message) { got <- m })
	defer cancel()

	rt.surface.Goto(navigation.AtIndex(3), 0)
	select {
	case m := <-got:
		assert.Equal(t, broadcast.Navigate(3, 0), m)
	case <-time.After(2 * time.Second):
		t.Fatal("no navigate message")
	}

	next := "# Only\n---slide---\n# Two"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides.md"), []byte(next), 0o644))

	changed, err := rt.deck.Reload()
	require.NoError(t, err)
	require.True(t, changed)

	select {
	case m := <-got:
		assert.Equal(t, broadcast.TypeReload, m.Type)
		assert.Equal(t, rt.deck.Checksum(), m.Checksum)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload message")
	}

	assert.Equal(t, 2, rt.surface.State().Index)

	n, err := rt.db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRuntime_WebSocketRequiresToken(t *testing.T) {
	rt, _ := testRuntime(t, func(c *Config) {
		c.Auth.Mode = AuthModeToken
		c.Auth.Token = "secret"
	})

	w := get(t, rt.handler(), "/ws")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open in token mode.
	w = get(t, rt.handler(), "/api/toc")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRuntime_Assets(t *testing.T) {
	rt, dir := testRuntime(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.svg"), []byte("<svg/>"), 0o644))

	w := get(t, rt.handler(), "/assets/logo.svg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<svg/>", w.Body.String())

	w = get(t, rt.handler(), "/assets/slides.md")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuntime_InjectedDeck(t *testing.T) {
	cfg := NewDefaultConfig()
	d := deck.FromString("# One\n---slide---\n# Two", deck.WithLogger(testutil.QuietLogger()))

	rt, err := newRuntime(&application{config: cfg, logger: testutil.QuietLogger(), deck: d}, io.Discard)
	require.NoError(t, err)
	defer rt.close()

	assert.Equal(t, 2, rt.deck.Len())
	assert.NoError(t, rt.watch(t.Context()))

	w := get(t, rt.handler(), "/assets/anything.png")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, ApplicationConfig{LogFormat: LogFormatText}).Info("hello")
	assert.True(t, strings.Contains(buf.String(), "level=INFO"), buf.String())

	buf.Reset()
	NewLogger(&buf, ApplicationConfig{LogFormat: LogFormatJSON}).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), buf.String())
}
