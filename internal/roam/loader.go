// Package roam loads Roam Research JSON exports, plain or zipped, into page trees.
package roam

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/models"
)

// unitSep cannot be stored in a note field; it is read as a space.
const unitSep = "\x1f"

func clean(s string) string {
	return strings.ReplaceAll(s, unitSep, " ")
}

type rawBlock struct {
	String     string     `json:"string"`
	UID        string     `json:"uid"`
	CreateTime int64      `json:"create-time"`
	EditTime   int64      `json:"edit-time"`
	Children   []rawBlock `json:"children"`
}

type rawPage struct {
	Title    string     `json:"title"`
	UID      string     `json:"uid"`
	Children []rawBlock `json:"children"`
}

// IsExport reports whether name has an export file extension.
func IsExport(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".zip":
		return true
	}
	return false
}

// LoadPages reads the export at path.
func LoadPages(path string) ([]models.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("roam: read %s: %w", path, err)
	}
	return LoadBytes(path, data)
}

// LoadBytes decodes an export held in memory; name selects the format.
func LoadBytes(name string, data []byte) ([]models.Page, error) {
	if strings.EqualFold(filepath.Ext(name), ".zip") {
		return loadZip(data)
	}
	return Decode(bytes.NewReader(data))
}

// Decode reads a JSON export from r.
func Decode(r io.Reader) ([]models.Page, error) {
	var raw []rawPage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("roam: decode: %w: %v", apperr.ErrInvalidExport, err)
	}
	pages := make([]models.Page, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, models.Page{
			UID:    clean(p.UID),
			Title:  clean(p.Title),
			Blocks: convertBlocks(p.Children),
		})
	}
	return pages, nil
}

func loadZip(data []byte) ([]models.Page, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("roam: open zip: %w: %v", apperr.ErrInvalidExport, err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".json") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("roam: open %s: %w", f.Name, err)
		}
		pages, err := Decode(rc)
		rc.Close()
		return pages, err
	}
	return nil, fmt.Errorf("roam: no json file in zip: %w", apperr.ErrInvalidExport)
}

func convertBlocks(raw []rawBlock) []models.Block {
	if len(raw) == 0 {
		return nil
	}
	out := make([]models.Block, 0, len(raw))
	for _, b := range raw {
		out = append(out, models.Block{
			UID:      clean(b.UID),
			Text:     clean(b.String),
			Children: convertBlocks(b.Children),
			Created:  fromMillis(b.CreateTime),
			Updated:  fromMillis(b.EditTime),
		})
	}
	return out
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
