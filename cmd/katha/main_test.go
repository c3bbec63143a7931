package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/katha/internal/apperr"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&flags{})
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(context.Background(), append([]string{"katha"}, args...))
	return out.String(), err
}

func TestInit_WritesStarterDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk", "slides.md")

	out, err := runApp(t, "--config", "", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, starterDeck, string(data))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.md")
	require.NoError(t, os.WriteFile(path, []byte("# Mine"), 0o644))

	_, err := runApp(t, "--config", "", "init", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Mine", string(data))
}

func TestOutline_PrintsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.md")
	require.NoError(t, os.WriteFile(path, []byte(starterDeck), 0o644))

	out, err := runApp(t, "--config", "", "outline", path)
	require.NoError(t, err)
	assert.Contains(t, out, "My Talk")
	assert.Contains(t, out, "agenda")
	assert.Contains(t, out, "split")
}

func TestOutline_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slides.md")
	require.NoError(t, os.WriteFile(path, []byte(starterDeck), 0o644))

	out, err := runApp(t, "--config", "", "outline", "--json", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"clicks":2`)
}

func TestLoadConfig_MissingExplicitConfig(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := runApp(t, "--config", missing, "outline", "x.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "katha.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("deck:\n  path: "+filepath.Join(dir, "from-config.md")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "from-config.md"), []byte("# From Config"), 0o644))

	out, err := runApp(t, "--config", cfgPath, "outline")
	require.NoError(t, err)
	assert.Contains(t, out, "From Config")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "arg.md"), []byte("# From Arg"), 0o644))
	out, err = runApp(t, "--config", cfgPath, "outline", filepath.Join(dir, "arg.md"))
	require.NoError(t, err)
	assert.Contains(t, out, "From Arg")
}

func TestLoadConfig_BadLogLevel(t *testing.T) {
	_, err := runApp(t, "--config", "", "--log-level", "loud", "outline", "x.md")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
