//go:build sqlite_fts5

package collection

import (
	"context"
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			note_id UNINDEXED,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(ctx context.Context, tx *sql.Tx, noteID int64, body string) error {
	_, _ = tx.ExecContext(ctx, `DELETE FROM notes_fts WHERE note_id = ?`, noteID)
	if _, err := tx.ExecContext(ctx, `INSERT INTO notes_fts (note_id, body) VALUES (?, ?)`, noteID, body); err != nil {
		return fmt.Errorf("collection: upsert fts: %w", err)
	}
	return nil
}

// Search performs an FTS5 full-text search over note fields.
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT f.note_id,
		       n.block_id,
		       snippet(notes_fts, 1, '<b>', '</b>', '...', 32)
		FROM notes_fts f JOIN notes n ON n.id = f.note_id
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("collection: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.NoteID, &r.BlockID, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
