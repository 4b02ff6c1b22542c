package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/starford/roamdeck/internal/models"
)

// ListOptions filters and pages ListNotes. Zero ids match everything.
type ListOptions struct {
	ModelID int64
	DeckID  int64
	Limit   int
	Offset  int
}

// SearchResult represents one search hit.
type SearchResult struct {
	NoteID  int64  `json:"note_id"`
	BlockID string `json:"block_id"`
	Snippet string `json:"snippet"`
}

// ListNotes returns a page of notes, newest first, and the total count.
func (db *DB) ListNotes(ctx context.Context, opts ListOptions) ([]models.Note, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	where := `WHERE (? = 0 OR n.model_id = ?) AND (? = 0 OR n.deck_id = ?)`
	args := []any{opts.ModelID, opts.ModelID, opts.DeckID, opts.DeckID}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM notes n `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("collection: count notes: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT n.id, n.guid, n.model_id, n.deck_id, n.flds, n.created_at, n.updated_at, m.fields
		FROM notes n JOIN models m ON m.id = n.model_id
		`+where+`
		ORDER BY n.updated_at DESC, n.id DESC
		LIMIT ? OFFSET ?
	`, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("collection: list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var (
			n          models.Note
			flds       string
			fieldsJSON string
			names      []string
		)
		if err := rows.Scan(&n.ID, &n.GUID, &n.ModelID, &n.DeckID, &flds, &n.CreatedAt, &n.UpdatedAt, &fieldsJSON); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &names); err != nil {
			return nil, 0, fmt.Errorf("collection: list notes: decode model fields: %w", err)
		}
		n.Fields = decodeFields(names, flds)
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// RecordImport stores the checksum and summary of the last import of path.
func (db *DB) RecordImport(ctx context.Context, path, checksum, summary string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO imports (path, checksum, summary, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			summary     = excluded.summary,
			imported_at = excluded.imported_at
	`, path, checksum, summary, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("collection: record import %s: %w", path, err)
	}
	return nil
}

// ImportChecksums returns path → checksum for every recorded import.
func (db *DB) ImportChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM imports`)
	if err != nil {
		return nil, fmt.Errorf("collection: import checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
