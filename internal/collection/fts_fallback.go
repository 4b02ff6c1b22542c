//go:build !sqlite_fts5

package collection

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE on notes.flds.
	return nil
}

func ftsUpsert(_ context.Context, _ *sql.Tx, _ int64, _ string) error {
	return nil
}

// Search performs a LIKE-based search (fallback when FTS5 is not compiled in).
func (db *DB) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, block_id, flds
		FROM notes
		WHERE flds LIKE ?
		ORDER BY updated_at DESC
		LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, fmt.Errorf("collection: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var (
			r    SearchResult
			flds string
		)
		if err := rows.Scan(&r.NoteID, &r.BlockID, &flds); err != nil {
			return nil, err
		}
		r.Snippet = snippet(searchBody(flds), 200)
		out = append(out, r)
	}
	return out, rows.Err()
}

func snippet(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
