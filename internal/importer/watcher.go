package importer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/roamdeck/internal/roam"
	"github.com/starford/roamdeck/internal/storage"
)

// EventCallback is called after a watcher-driven import.
// kind is "created" or "updated".
type EventCallback func(kind, path string, s Summary)

const debounce = 200 * time.Millisecond

// Watch imports exports as they land in the inbox until ctx is cancelled.
// Bursts of write events for the same file are coalesced, and a file is only
// imported when its checksum differs from the last recorded import. Removing
// an export never removes notes.
func (im *Importer) Watch(ctx context.Context, inbox storage.Provider, root string, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	im.logger.Info("watcher: started", slog.String("root", root))

	pending := make(map[string]string)
	rescan := false

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			im.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			im.flush(ctx, inbox, pending, rescan, cb)
			pending = make(map[string]string)
			rescan = false

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						im.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					// Exports may already sit in the new directory.
					rescan = true
					schedule()
					continue
				}
			}

			if !roam.IsExport(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 || pending[rel] == "created" {
					kind = "created"
				}
				pending[rel] = kind
				schedule()

			case ev.Op&fsnotify.Rename != 0:
				// The new name arrives as a Create when it stays inside a
				// watched directory; a rescan catches the rest.
				delete(pending, rel)
				rescan = true
				schedule()

			case ev.Op&fsnotify.Remove != 0:
				delete(pending, rel)
				im.logger.Debug("watcher: export removed, notes kept", slog.String("path", rel))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (im *Importer) flush(ctx context.Context, inbox storage.Provider, pending map[string]string, rescan bool, cb EventCallback) {
	if len(pending) > 0 {
		recorded, err := im.store.ImportChecksums(ctx)
		if err != nil {
			im.logger.Warn("watcher: import checksums failed", slog.String("error", err.Error()))
			return
		}
		for rel, kind := range pending {
			s, imported, err := im.importFile(ctx, inbox, rel, recorded[rel])
			if err != nil {
				im.logger.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
				continue
			}
			if !imported {
				continue
			}
			im.logger.Debug("watcher: imported", slog.String("path", rel), slog.String("op", kind))
			if cb != nil {
				cb(kind, rel, s)
			}
		}
	}

	if rescan {
		results, err := im.Sync(ctx, inbox)
		if err != nil {
			im.logger.Warn("watcher: rescan failed", slog.String("error", err.Error()))
		}
		for _, r := range results {
			if cb != nil {
				cb("created", r.Path, r.Summary)
			}
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
