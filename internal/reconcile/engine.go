// Package reconcile merges freshly imported cards into stored notes keyed by
// block id, without overwriting card text the user edited by hand.
//
// Edit detection compares the stored text with the stored roam text (the text
// written by the last import). It cannot tell apart a hand edit that happens
// to equal the new incoming text from an untouched note, and treats both as
// unedited.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/roamdeck/internal/models"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks github.com/starford/roamdeck/internal/reconcile NoteStore

// NoteStore is the note collection the engine writes to. Implementations must
// serialize writers per note when used concurrently.
type NoteStore interface {
	AddNote(ctx context.Context, fields map[string]string) (int64, error)
	GetNote(ctx context.Context, id int64) (*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
}

// Index maps block ids to note ids.
type Index map[string]int64

// Result reports what Upsert did.
type Result struct {
	Created bool
	Changed bool
}

// Engine upserts cards.
type Engine struct {
	store  NoteStore
	fields FieldMap
	logger *slog.Logger
}

// NewEngine creates an Engine writing the mapped fields to store.
func NewEngine(store NoteStore, fields FieldMap, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, fields: fields, logger: logger}
}

// Upsert inserts card when its block id is not in index, and merges it into
// the existing note otherwise. A newly created note is added to index.
func (e *Engine) Upsert(ctx context.Context, card models.Card, index Index) (Result, error) {
	id, ok := index[card.BlockID]
	if !ok {
		return e.insert(ctx, card, index)
	}

	note, err := e.store.GetNote(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: get note %d: %w", id, err)
	}
	if note.Fields == nil {
		note.Fields = make(map[string]string)
	}

	changed := false
	if e.textWritable(note) && note.Field(e.fields.Text) != card.Text {
		note.Fields[e.fields.Text] = card.Text
		changed = true
	}
	for _, fv := range e.fields.tracked(card) {
		if note.Field(fv.name) != fv.value {
			note.Fields[fv.name] = fv.value
			changed = true
		}
	}

	if !changed {
		e.logger.Debug("reconcile: unchanged", slog.String("block_id", card.BlockID))
		return Result{}, nil
	}
	if err := e.store.UpdateNote(ctx, note); err != nil {
		return Result{}, fmt.Errorf("reconcile: update note %d: %w", id, err)
	}
	e.logger.Debug("reconcile: updated", slog.String("block_id", card.BlockID), slog.Int64("note_id", id))
	return Result{Changed: true}, nil
}

// textWritable reports whether the primary text still holds what the last
// import wrote. Without a roam text field edits cannot be detected, so the
// text is left alone.
func (e *Engine) textWritable(note *models.Note) bool {
	if e.fields.RoamText == "" {
		return false
	}
	return note.Field(e.fields.Text) == note.Field(e.fields.RoamText)
}

func (e *Engine) insert(ctx context.Context, card models.Card, index Index) (Result, error) {
	id, err := e.store.AddNote(ctx, e.fields.Values(card))
	if err != nil {
		return Result{}, fmt.Errorf("reconcile: add note for block %s: %w", card.BlockID, err)
	}
	if card.BlockID != "" {
		index[card.BlockID] = id
	}
	e.logger.Debug("reconcile: created", slog.String("block_id", card.BlockID), slog.Int64("note_id", id))
	return Result{Created: true, Changed: true}, nil
}
