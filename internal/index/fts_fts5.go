//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS slides_fts USING fts5(
			ordinal UNINDEXED,
			slug UNINDEXED,
			title,
			body,
			notes,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsClear(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM slides_fts`); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	return nil
}

func ftsInsert(tx *sql.Tx, r SlideRow) error {
	_, err := tx.Exec(`INSERT INTO slides_fts (ordinal, slug, title, body, notes) VALUES (?, ?, ?, ?, ?)`,
		r.Ordinal, r.Slug, r.Title, r.Body, r.Notes)
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

// ftsQuery quotes every term as an FTS5 prefix string so user input is
// never parsed as query syntax.
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(terms, " ")
}

// Search performs an FTS5 full-text search and returns matching slides with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := ftsQuery(query)
	if q == "" {
		return []SearchResult{}, nil
	}
	rows, err := db.conn.Query(`
		SELECT ordinal,
		       slug,
		       title,
		       snippet(slides_fts, 3, '<b>', '</b>', '...', 32)
		FROM slides_fts
		WHERE slides_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, q, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	return scanResults(rows)
}
