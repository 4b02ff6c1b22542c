package collection

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/reconcile"
)

// CreateModel adds a note model with the given ordered field names.
func (db *DB) CreateModel(ctx context.Context, name string, fields []string) (*models.NoteModel, error) {
	if name == "" || len(fields) == 0 {
		return nil, fmt.Errorf("collection: create model: name and fields are required")
	}
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f == "" || seen[f] {
			return nil, fmt.Errorf("collection: create model %s: bad or duplicate field %q", name, f)
		}
		seen[f] = true
	}

	fieldsJSON, _ := json.Marshal(fields)
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO models (name, fields, created_at) VALUES (?, ?, ?)`,
		name, string(fieldsJSON), time.Now().UTC())
	if err != nil {
		var sqErr sqlite3.Error
		if errors.As(err, &sqErr) && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, fmt.Errorf("collection: create model %s: %w", name, apperr.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("collection: create model %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("collection: create model %s: %w", name, err)
	}
	return &models.NoteModel{ID: id, Name: name, Fields: append([]string(nil), fields...)}, nil
}

// Model returns the note model called name.
func (db *DB) Model(ctx context.Context, name string) (*models.NoteModel, error) {
	var (
		m          models.NoteModel
		fieldsJSON string
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, fields FROM models WHERE name = ?`, name,
	).Scan(&m.ID, &m.Name, &fieldsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("collection: model %s: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("collection: model %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &m.Fields); err != nil {
		return nil, fmt.Errorf("collection: model %s: decode fields: %w", name, err)
	}
	return &m, nil
}

// Deck returns the id of the deck called name, creating it if needed.
func (db *DB) Deck(ctx context.Context, name string) (int64, error) {
	if name == "" {
		name = DefaultDeck
	}
	if _, err := db.conn.ExecContext(ctx, `INSERT OR IGNORE INTO decks (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("collection: deck %s: %w", name, err)
	}
	var id int64
	if err := db.conn.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("collection: deck %s: %w", name, err)
	}
	return id, nil
}

// Bind checks that every mapped field exists in the model and returns the
// model's notes as a reconciliation store. Nothing is written when a field is
// missing.
func (db *DB) Bind(ctx context.Context, modelName, deckName string, fields reconcile.FieldMap) (*ModelNotes, error) {
	model, err := db.Model(ctx, modelName)
	if err != nil {
		return nil, err
	}
	if fields.BlockID == "" {
		return nil, fmt.Errorf("collection: bind %s: block id field not mapped: %w", modelName, apperr.ErrMissingField)
	}
	have := make(map[string]bool, len(model.Fields))
	for _, f := range model.Fields {
		have[f] = true
	}
	for _, f := range fields.Names() {
		if !have[f] {
			return nil, fmt.Errorf("collection: bind %s: field %q: %w", modelName, f, apperr.ErrMissingField)
		}
	}

	deckID, err := db.Deck(ctx, deckName)
	if err != nil {
		return nil, err
	}
	return &ModelNotes{db: db, model: *model, deckID: deckID, blockField: fields.BlockID}, nil
}
