// Package collection is a SQLite note collection: note models with ordered
// fields, decks, and notes whose field values are stored joined by 0x1f.
package collection

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS models (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	fields     TEXT NOT NULL DEFAULT '[]',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS decks (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	guid       TEXT NOT NULL UNIQUE,
	model_id   INTEGER NOT NULL REFERENCES models(id),
	deck_id    INTEGER NOT NULL REFERENCES decks(id),
	flds       TEXT NOT NULL DEFAULT '',
	block_id   TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notes_model ON notes(model_id);
CREATE INDEX IF NOT EXISTS idx_notes_block ON notes(model_id, block_id);

CREATE TABLE IF NOT EXISTS imports (
	path        TEXT PRIMARY KEY,
	checksum    TEXT NOT NULL DEFAULT '',
	summary     TEXT NOT NULL DEFAULT '',
	imported_at DATETIME NOT NULL
);
`

// fieldSep separates field values inside notes.flds.
const fieldSep = "\x1f"

// DefaultDeck is used when no deck name is given.
const DefaultDeck = "Default"

// DB wraps a sql.DB with collection operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite collection and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("collection: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collection: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collection: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("collection: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
