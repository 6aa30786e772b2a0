// Package watch triggers incremental scans when outline files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/pinservice"
	"github.com/starford/raido/internal/scanner"
)

const debounce = 500 * time.Millisecond

// Run watches every root until ctx is cancelled, scheduling a debounced
// incremental scan after each burst of outline-file events. Directories
// created at runtime are added to the watch list. A scan already in flight
// makes the trigger a no-op, per the orchestrator's re-entrancy rule.
func Run(ctx context.Context, roots []string, svc *pinservice.Service, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, root := range roots {
		if err := addDirsRecursive(w, root); err != nil {
			logger.Warn("watch: add root failed",
				slog.String("root", root), slog.String("error", err.Error()))
		}
	}

	logger.Info("watch: started", slog.Int("roots", len(roots)))

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
			logger.Info("watch: stopped")
			return nil

		case <-fire:
			res := svc.Scan()
			logger.Debug("watch: scan triggered",
				slog.Int("parsed_files", res.ParsedFiles),
				slog.Int("pinned_items", res.PinnedItems))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watch: add new dir failed",
							slog.String("path", ev.Name), slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			if strings.HasSuffix(ev.Name, scanner.OutlineExt) {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its non-pruned subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return fs.SkipDir
		}
		return w.Add(path)
	})
}
