// Package index provides a SQLite-backed search index over the slides of a
// deck, with optional FTS5 full-text search.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS slides (
	ordinal INTEGER PRIMARY KEY,
	slug    TEXT NOT NULL DEFAULT '',
	title   TEXT NOT NULL DEFAULT '',
	layout  TEXT NOT NULL DEFAULT '',
	notes   TEXT NOT NULL DEFAULT '',
	body    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_slides_slug ON slides(slug);

CREATE TABLE IF NOT EXISTS deck (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// Use ":memory:" for a throwaway index.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if dsn == ":memory:" {
		// Each pooled connection would get its own empty in-memory database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
