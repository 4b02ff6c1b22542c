// Package importer runs Roam exports through card building and
// reconciliation into the note collection.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/roamdeck/internal/collection"
	"github.com/starford/roamdeck/internal/flashcard"
	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/reconcile"
	"github.com/starford/roamdeck/internal/roam"
)

// Settings selects where cards are written.
type Settings struct {
	ModelName string
	DeckName  string
	Fields    reconcile.FieldMap
}

// Hook is called after every successful import of a named export.
type Hook func(name string, s Summary)

// CardHook is called for every card an import created ("created") or
// changed ("updated").
type CardHook func(kind, blockID string)

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) { im.logger = l }
}

// WithHook registers h to run after each import.
func WithHook(h Hook) Option {
	return func(im *Importer) { im.hooks = append(im.hooks, h) }
}

// WithCardHook registers h to run for each written card.
func WithCardHook(h CardHook) Option {
	return func(im *Importer) { im.cardHooks = append(im.cardHooks, h) }
}

// Importer imports exports into a collection. Runs are serialized.
type Importer struct {
	store     collection.Store
	builder   *flashcard.Builder
	settings  Settings
	logger    *slog.Logger
	hooks     []Hook
	cardHooks []CardHook

	mu sync.Mutex
}

// New creates an Importer.
func New(store collection.Store, builder *flashcard.Builder, settings Settings, opts ...Option) *Importer {
	im := &Importer{
		store:    store,
		builder:  builder,
		settings: settings,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(im)
	}
	return im
}

// Builder returns the card builder used for imports.
func (im *Importer) Builder() *flashcard.Builder { return im.builder }

// Settings returns the import target.
func (im *Importer) Settings() Settings { return im.settings }

// ImportPath imports the export file at path.
func (im *Importer) ImportPath(ctx context.Context, path string) (Summary, error) {
	pages, err := roam.LoadPages(path)
	if err != nil {
		return Summary{}, err
	}
	return im.importNamed(ctx, path, pages)
}

// ImportBytes imports an export held in memory; name selects the format.
func (im *Importer) ImportBytes(ctx context.Context, name string, data []byte) (Summary, error) {
	pages, err := roam.LoadBytes(name, data)
	if err != nil {
		return Summary{}, err
	}
	return im.importNamed(ctx, name, pages)
}

func (im *Importer) importNamed(ctx context.Context, name string, pages []models.Page) (Summary, error) {
	s, err := im.ImportPages(ctx, pages)
	if err != nil {
		return Summary{}, err
	}
	im.logger.Info("import: done",
		slog.String("export", name),
		slog.Int("added_or_updated", s.AddedOrUpdated),
		slog.Int("unchanged", s.Unchanged))
	for _, h := range im.hooks {
		h(name, s)
	}
	return s, nil
}

// ImportPages binds the configured note model, then upserts one note per
// card. The model is checked before anything is written. A store failure
// stops the run; notes written before it are kept.
func (im *Importer) ImportPages(ctx context.Context, pages []models.Page) (Summary, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	notes, err := im.store.Bind(ctx, im.settings.ModelName, im.settings.DeckName, im.settings.Fields)
	if err != nil {
		return Summary{}, fmt.Errorf("importer: %w", err)
	}

	cards := im.builder.Cards(pages)
	if len(cards) == 0 {
		return Summary{}, nil
	}

	index, err := notes.BlockIndex(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("importer: %w", err)
	}

	engine := reconcile.NewEngine(notes, im.settings.Fields, im.logger)
	var s Summary
	for _, card := range cards {
		res, err := engine.Upsert(ctx, card, index)
		if err != nil {
			return Summary{}, fmt.Errorf("importer: %w", err)
		}
		switch {
		case res.Created:
			s.Created++
			s.AddedOrUpdated++
			im.cardWritten("created", card.BlockID)
		case res.Changed:
			s.AddedOrUpdated++
			im.cardWritten("updated", card.BlockID)
		default:
			s.Unchanged++
		}
	}
	return s, nil
}

func (im *Importer) cardWritten(kind, blockID string) {
	for _, h := range im.cardHooks {
		h(kind, blockID)
	}
}
