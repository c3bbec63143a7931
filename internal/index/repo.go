package index

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/parser"
	"github.com/starford/katha/internal/patterns"
)

// SlideRow represents a row in the slides table.
type SlideRow struct {
	Ordinal int
	Slug    string
	Title   string
	Layout  string
	Notes   string
	Body    string
}

// SearchResult represents one search hit. Index is 1-based.
type SearchResult struct {
	Index   int    `json:"index"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// RowsFromSlides flattens parsed slides into index rows. The body is every
// slot's text, default slot first, then the named slots by name.
func RowsFromSlides(slides []models.Slide) []SlideRow {
	rows := make([]SlideRow, 0, len(slides))
	for _, s := range slides {
		rows = append(rows, SlideRow{
			Ordinal: s.Ordinal,
			Slug:    s.Slug,
			Title:   parser.Title(s),
			Layout:  s.Meta.Layout(),
			Notes:   s.Notes,
			Body:    slotText(s.Slots),
		})
	}
	return rows
}

func slotText(slots map[string]string) string {
	names := make([]string, 0, len(slots))
	for name := range slots {
		if name != patterns.DefaultSlotKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	parts := []string{slots[patterns.DefaultSlotKey]}
	for _, name := range names {
		parts = append(parts, slots[name])
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// Replace swaps the whole index for rows and records checksum, in one
// transaction.
func (db *DB) Replace(checksum string, rows []SlideRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM slides`); err != nil {
		return fmt.Errorf("index: clear slides: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO slides (ordinal, slug, title, layout, notes, body)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare slide insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Ordinal, r.Slug, r.Title, r.Layout, r.Notes, r.Body); err != nil {
			return fmt.Errorf("index: insert slide %d: %w", r.Ordinal, err)
		}
		if err := ftsInsert(tx, r); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`
		INSERT INTO deck (id, checksum, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, checksum)
	if err != nil {
		return fmt.Errorf("index: store checksum: %w", err)
	}

	return tx.Commit()
}

// Checksum returns the checksum of the indexed deck, or empty string if
// nothing was indexed yet.
func (db *DB) Checksum() (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM deck WHERE id = 1`).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// Count returns the number of indexed slides.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM slides`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

func scanResults(rows *sql.Rows) ([]SearchResult, error) {
	defer rows.Close()

	out := []SearchResult{}
	for rows.Next() {
		var r SearchResult
		var ordinal int
		if err := rows.Scan(&ordinal, &r.Slug, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		r.Index = ordinal + 1
		out = append(out, r)
	}
	return out, rows.Err()
}
