package collection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/reconcile"
)

// ModelNotes is the set of notes of one model. New notes go to the bound deck.
type ModelNotes struct {
	db         *DB
	model      models.NoteModel
	deckID     int64
	blockField string
}

// Model returns the bound note model.
func (mn *ModelNotes) Model() models.NoteModel { return mn.model }

// BlockIndex maps the block id of every note of the model to its note id.
func (mn *ModelNotes) BlockIndex(ctx context.Context) (reconcile.Index, error) {
	rows, err := mn.db.conn.QueryContext(ctx,
		`SELECT block_id, id FROM notes WHERE model_id = ? AND block_id != ''`, mn.model.ID)
	if err != nil {
		return nil, fmt.Errorf("collection: block index: %w", err)
	}
	defer rows.Close()

	idx := make(reconcile.Index)
	for rows.Next() {
		var (
			blockID string
			id      int64
		)
		if err := rows.Scan(&blockID, &id); err != nil {
			return nil, err
		}
		idx[blockID] = id
	}
	return idx, rows.Err()
}

// AddNote stores a new note and returns its id.
func (mn *ModelNotes) AddNote(ctx context.Context, fields map[string]string) (int64, error) {
	flds, err := encodeFields(mn.model, fields)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()

	tx, err := mn.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("collection: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		INSERT INTO notes (guid, model_id, deck_id, flds, block_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), mn.model.ID, mn.deckID, flds, fields[mn.blockField], now, now)
	if err != nil {
		return 0, fmt.Errorf("collection: add note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("collection: add note: %w", err)
	}
	if err := ftsUpsert(ctx, tx, id, searchBody(flds)); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// GetNote returns the note with id, which must belong to the model.
func (mn *ModelNotes) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	row := mn.db.conn.QueryRowContext(ctx, `
		SELECT id, guid, model_id, deck_id, flds, created_at, updated_at
		FROM notes WHERE id = ? AND model_id = ?
	`, id, mn.model.ID)
	n, err := scanNote(row, mn.model.Fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: note %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: note %d: %w", id, err)
	}
	return n, nil
}

// UpdateNote writes the note's fields back.
func (mn *ModelNotes) UpdateNote(ctx context.Context, note *models.Note) error {
	flds, err := encodeFields(mn.model, note.Fields)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	tx, err := mn.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("collection: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, `
		UPDATE notes SET flds = ?, block_id = ?, updated_at = ?
		WHERE id = ? AND model_id = ?
	`, flds, note.Field(mn.blockField), now, note.ID, mn.model.ID)
	if err != nil {
		return fmt.Errorf("collection: update note %d: %w", note.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection: update note %d: %w", note.ID, apperr.ErrNotFound)
	}
	if err := ftsUpsert(ctx, tx, note.ID, searchBody(flds)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("collection: update note %d: %w", note.ID, err)
	}
	note.UpdatedAt = now
	return nil
}

// NoteByBlockID returns the note imported from blockID.
func (mn *ModelNotes) NoteByBlockID(ctx context.Context, blockID string) (*models.Note, error) {
	return mn.db.NoteByBlockID(ctx, mn.model, blockID)
}

// NoteByBlockID returns the note of model imported from blockID, in any deck.
// It only reads.
func (db *DB) NoteByBlockID(ctx context.Context, model models.NoteModel, blockID string) (*models.Note, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT id, guid, model_id, deck_id, flds, created_at, updated_at
		FROM notes WHERE model_id = ? AND block_id = ?
		ORDER BY id LIMIT 1
	`, model.ID, blockID)
	n, err := scanNote(row, model.Fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: block %s: %w", blockID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: block %s: %w", blockID, err)
	}
	return n, nil
}

// encodeFields joins values in model field order. The separator is replaced
// by a space inside values. Names outside the model are rejected.
func encodeFields(model models.NoteModel, fields map[string]string) (string, error) {
	pos := make(map[string]int, len(model.Fields))
	for i, f := range model.Fields {
		pos[f] = i
	}
	vals := make([]string, len(model.Fields))
	for name, v := range fields {
		i, ok := pos[name]
		if !ok {
			return "", fmt.Errorf("collection: model %s has no field %q: %w", model.Name, name, apperr.ErrMissingField)
		}
		vals[i] = strings.ReplaceAll(v, fieldSep, " ")
	}
	return strings.Join(vals, fieldSep), nil
}

func decodeFields(names []string, flds string) map[string]string {
	vals := strings.Split(flds, fieldSep)
	out := make(map[string]string, len(names))
	for i, name := range names {
		if i < len(vals) {
			out[name] = vals[i]
		} else {
			out[name] = ""
		}
	}
	return out
}

func searchBody(flds string) string {
	return strings.ReplaceAll(flds, fieldSep, " ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner, fieldNames []string) (*models.Note, error) {
	var (
		n    models.Note
		flds string
	)
	if err := row.Scan(&n.ID, &n.GUID, &n.ModelID, &n.DeckID, &flds, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	n.Fields = decodeFields(fieldNames, flds)
	return &n, nil
}
