//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; full-text search uses LIKE on the slides table.
	return nil
}

func ftsClear(_ *sql.Tx) error { return nil }

func ftsInsert(_ *sql.Tx, _ SlideRow) error { return nil }

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchResult{}, nil
	}
	like := "%" + likeEscaper.Replace(query) + "%"
	rows, err := db.conn.Query(`
		SELECT ordinal, slug, title, substr(body, 1, 200)
		FROM slides
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\' OR notes LIKE ? ESCAPE '\'
		ORDER BY ordinal
		LIMIT ?
	`, like, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
