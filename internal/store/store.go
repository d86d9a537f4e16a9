// Package store persists board snapshots in SQLite. The board is the
// source of truth at runtime; the store receives the full note collection
// and viewport after every committed mutation and restores them at startup.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id          TEXT PRIMARY KEY,
	x           REAL NOT NULL DEFAULT 0,
	y           REAL NOT NULL DEFAULT 0,
	width       REAL NOT NULL DEFAULT 220,
	height      REAL NOT NULL DEFAULT 160,
	content     TEXT NOT NULL DEFAULT '',
	split_ratio REAL NOT NULL DEFAULT 0.5,
	z_order     INTEGER NOT NULL DEFAULT 0,
	is_root     INTEGER NOT NULL DEFAULT 0,
	parent_id   TEXT NOT NULL DEFAULT '',
	stack_order INTEGER NOT NULL DEFAULT 0,
	collapsed   INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notes_parent ON notes(parent_id);

CREATE TABLE IF NOT EXISTS board (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	viewport_x REAL NOT NULL DEFAULT 0,
	viewport_y REAL NOT NULL DEFAULT 0
);
`

// DB wraps a sql.DB with snapshot operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
