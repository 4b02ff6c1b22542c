package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/roamdeck/internal/apperr"
	"github.com/starford/roamdeck/internal/checksum"
	"github.com/starford/roamdeck/internal/storage"
)

// FileSummary is the result of importing one inbox file.
type FileSummary struct {
	Path    string  `json:"path"`
	Summary Summary `json:"summary"`
}

// Sync imports every inbox export whose content changed since its last
// recorded import. Unreadable or malformed exports are logged and skipped;
// a collection that does not match the configured model stops the pass.
func (im *Importer) Sync(ctx context.Context, inbox storage.Provider) ([]FileSummary, error) {
	metas, err := inbox.List("")
	if err != nil {
		return nil, err
	}
	recorded, err := im.store.ImportChecksums(ctx)
	if err != nil {
		return nil, err
	}

	var out []FileSummary
	for _, m := range metas {
		if recorded[m.Path] == m.Checksum {
			continue
		}
		s, imported, err := im.importFile(ctx, inbox, m.Path, recorded[m.Path])
		if err != nil {
			if fatal(err) {
				return out, err
			}
			im.logger.Warn("sync: import failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if imported {
			out = append(out, FileSummary{Path: m.Path, Summary: s})
		}
	}
	return out, nil
}

// ImportInboxFile imports the inbox file rel unconditionally and records it.
func (im *Importer) ImportInboxFile(ctx context.Context, inbox storage.Provider, rel string) (Summary, error) {
	s, _, err := im.importFile(ctx, inbox, rel, "")
	return s, err
}

// importFile imports rel and records the import. Content whose checksum
// equals last is skipped.
func (im *Importer) importFile(ctx context.Context, inbox storage.Provider, rel, last string) (Summary, bool, error) {
	data, err := inbox.Read(rel)
	if err != nil {
		return Summary{}, false, err
	}
	sum := checksum.Sum(data)
	if sum == last {
		return Summary{}, false, nil
	}
	s, err := im.ImportBytes(ctx, rel, data)
	if err != nil {
		return Summary{}, false, err
	}
	if err := im.store.RecordImport(ctx, rel, sum, s.String()); err != nil {
		return s, true, fmt.Errorf("importer: %w", err)
	}
	return s, true, nil
}

// fatal reports errors that will fail every export the same way.
func fatal(err error) bool {
	return errors.Is(err, apperr.ErrMissingField) || errors.Is(err, apperr.ErrNotFound)
}
