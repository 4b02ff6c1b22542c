// Package cardservice is the card-facing API shared by the HTTP and MCP
// surfaces: reading stored cards, searching, uploading exports and
// previewing how a block would render.
package cardservice

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/collection"
	"github.com/starford/roamdeck/internal/importer"
	"github.com/starford/roamdeck/internal/markup"
	"github.com/starford/roamdeck/internal/models"
	"github.com/starford/roamdeck/internal/roam"
	"github.com/starford/roamdeck/internal/storage"
)

// UploadDir is the inbox directory uploads are written to.
const UploadDir = "uploads"

// CardDetail is a stored card with its note metadata.
type CardDetail struct {
	NoteID    int64       `json:"note_id"`
	GUID      string      `json:"guid"`
	Card      models.Card `json:"card"`
	Edited    bool        `json:"edited"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Preview is how a block would be stored.
type Preview struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Clozes int    `json:"clozes"`
	IsCard bool   `json:"is_card"`
}

// UploadResult reports an uploaded export.
type UploadResult struct {
	Path    string           `json:"path"`
	Summary importer.Summary `json:"summary"`
	Message string           `json:"message"`
}

// Service coordinates the collection, the inbox and the importer.
type Service struct {
	db    collection.Store
	inbox storage.Provider
	im    *importer.Importer
}

// NewService creates a new card service.
func NewService(db collection.Store, inbox storage.Provider, im *importer.Importer) *Service {
	return &Service{db: db, inbox: inbox, im: im}
}

func (s *Service) detail(n *models.Note) CardDetail {
	fields := s.im.Settings().Fields
	card := fields.Card(n)
	return CardDetail{
		NoteID:    n.ID,
		GUID:      n.GUID,
		Card:      card,
		Edited:    fields.RoamText != "" && card.Text != card.RoamText,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// GetCard returns the card imported from blockID. It does not write to the
// collection.
func (s *Service) GetCard(ctx context.Context, blockID string) (*CardDetail, error) {
	m, err := s.db.Model(ctx, s.im.Settings().ModelName)
	if err != nil {
		return nil, err
	}
	n, err := s.db.NoteByBlockID(ctx, *m, blockID)
	if err != nil {
		return nil, err
	}
	d := s.detail(n)
	return &d, nil
}

// ListCards returns a page of the cards of the configured model.
func (s *Service) ListCards(ctx context.Context, limit, offset int) ([]CardDetail, int, error) {
	m, err := s.db.Model(ctx, s.im.Settings().ModelName)
	if err != nil {
		return nil, 0, err
	}
	notes, total, err := s.db.ListNotes(ctx, collection.ListOptions{ModelID: m.ID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	items := make([]CardDetail, len(notes))
	for i := range notes {
		items[i] = s.detail(&notes[i])
	}
	return items, total, nil
}

// Search delegates full-text search to the collection.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]collection.SearchResult, error) {
	results, err := s.db.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []collection.SearchResult{}
	}
	return results, nil
}

// ImportUpload stores an uploaded export in the inbox and imports it.
func (s *Service) ImportUpload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || !roam.IsExport(name) {
		return nil, fmt.Errorf("cardservice: upload %q: want a .json or .zip export: %w", filename, apperr.ErrInvalidExport)
	}
	rel := path.Join(UploadDir, name)
	if err := s.inbox.Write(rel, data); err != nil {
		return nil, err
	}
	sum, err := s.im.ImportInboxFile(ctx, s.inbox, rel)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Path: rel, Summary: sum, Message: sum.String()}, nil
}

// ImportPath imports an export file from disk.
func (s *Service) ImportPath(ctx context.Context, p string) (importer.Summary, error) {
	return s.im.ImportPath(ctx, p)
}

// Preview renders text as a block on a page titled pageTitle. Lines of the
// form "name:: value" are taken as child command blocks.
func (s *Service) Preview(text, pageTitle string) Preview {
	var body []string
	var cmds []markup.ColonCommand
	for _, line := range strings.Split(text, "\n") {
		if c, ok := markup.ParseCommand(line); ok {
			cmds = append(cmds, c)
			continue
		}
		body = append(body, line)
	}
	r := s.im.Builder().Block(models.Block{Text: strings.Join(body, "\n")}, cmds, pageTitle)
	return Preview{Text: r.Body, Source: r.Source, Clozes: r.Clozes, IsCard: r.IsCard()}
}
