package deck_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/testutil"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestFromString(t *testing.T) {
	d := deck.FromString(testutil.SampleDeck, deck.WithLogger(testutil.QuietLogger()))

	require.Equal(t, 3, d.Len())
	assert.Equal(t, "agenda", d.Slides()[1].Slug)
	assert.Len(t, d.Checksum(), 64)

	_, err := d.Reload()
	assert.ErrorIs(t, err, deck.ErrNoSource)
}

func TestSlidesReturnsCopy(t *testing.T) {
	d := deck.FromString("# A\n---slide---\n# B")

	s := d.Slides()
	s[0].Slug = "mutated"
	assert.Equal(t, "a", d.Slides()[0].Slug)
}

func TestLoadAndReload(t *testing.T) {
	_, store := testutil.TestDeckDir(t, "# One")
	d := deck.New(store, "", deck.WithLogger(testutil.QuietLogger()))

	require.NoError(t, d.Load())
	assert.Equal(t, 1, d.Len())
	first := d.Checksum()

	var got []deck.Snapshot
	d.OnReload(func(s deck.Snapshot) { got = append(got, s) })

	changed, err := d.Reload()
	require.NoError(t, err)
	assert.False(t, changed, "unchanged content must not reload")
	assert.Empty(t, got)

	require.NoError(t, store.Write("slides.md", []byte("# One\n---slide---\n# Two")))
	changed, err = d.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, d.Len())
	assert.NotEqual(t, first, d.Checksum())

	require.Len(t, got, 1)
	assert.Equal(t, d.Checksum(), got[0].Checksum)
	assert.Len(t, got[0].Slides, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, store := testutil.TestDeckDir(t, "")
	d := deck.New(store, "absent.md")

	err := d.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, d.Len())
	assert.NotNil(t, d.Slides())
}

func TestEmptyDeckIsValid(t *testing.T) {
	_, store := testutil.TestDeckDir(t, "\n\n---slide---\n")
	d := deck.New(store, "slides.md")

	require.NoError(t, d.Load())
	assert.Equal(t, 0, d.Len())
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir, store := testutil.TestDeckDir(t, "# One")
	d := deck.New(store, "slides.md", deck.WithLogger(testutil.QuietLogger()))
	require.NoError(t, d.Load())

	var mu sync.Mutex
	reloads := 0
	d.OnReload(func(deck.Snapshot) {
		mu.Lock()
		reloads++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- deck.Watch(ctx, d, deck.WatchOptions{Debounce: 50 * time.Millisecond}) }()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "slides.md"), []byte("# One\n---slide---\n# Two"), 0o644))

	eventually(t, 5*time.Second, 25*time.Millisecond, func() bool { return d.Len() == 2 },
		"deck not reloaded after write")

	mu.Lock()
	assert.Equal(t, 1, reloads)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_IgnoresUnmatchedFiles(t *testing.T) {
	dir, store := testutil.TestDeckDir(t, "# One")
	d := deck.New(store, "slides.md", deck.WithLogger(testutil.QuietLogger()))
	require.NoError(t, d.Load())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deck.Watch(ctx, d, deck.WatchOptions{Patterns: []string{"*.md"}, Debounce: 20 * time.Millisecond})

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.md"), []byte("# Other"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, d.Len(), "other files must not change the deck")
}

func TestWatch_RequiresFile(t *testing.T) {
	d := deck.FromString("# A")
	err := deck.Watch(context.Background(), d, deck.WatchOptions{})
	assert.ErrorIs(t, err, deck.ErrNoSource)
}
