package collection

import (
	"context"

	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/reconcile"
)

// Store is the collection as seen by the importer and the card service.
type Store interface {
	CreateModel(ctx context.Context, name string, fields []string) (*models.NoteModel, error)
	Model(ctx context.Context, name string) (*models.NoteModel, error)
	Bind(ctx context.Context, modelName, deckName string, fields reconcile.FieldMap) (*ModelNotes, error)
	NoteByBlockID(ctx context.Context, model models.NoteModel, blockID string) (*models.Note, error)
	ListNotes(ctx context.Context, opts ListOptions) ([]models.Note, int, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	RecordImport(ctx context.Context, path, checksum, summary string) error
	ImportChecksums(ctx context.Context) (map[string]string, error)
	Close() error
}

var (
	_ Store               = (*DB)(nil)
	_ reconcile.NoteStore = (*ModelNotes)(nil)
)
