// Package testutil provides shared test helpers for deck directories and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/katha/internal/index"
	"github.com/starford/katha/internal/storage"
)

// SampleDeck is a small deck exercising front-matter, slots, notes and clicks.
const SampleDeck = `---
title: Welcome
layout: center
---
# Katha
<!-- greet the room -->
---slide---
---
id: agenda
clicks: 2
---
# Agenda
- parsing
- navigation
---slide---
---
layout: two-cols
---
# Compare
Left side
::right::
Right side
`

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "katha-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDeckDir creates a temporary deck directory. When content is non-empty
// it is written to slides.md.
func TestDeckDir(t *testing.T, content string) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	if content != "" {
		if err := store.Write("slides.md", []byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	return dir, store
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
