// Package scanner discovers org outline files under configured root
// directories and decides which of them are stale relative to the cache.
package scanner

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
)

// OutlineExt is the file extension of outline files.
const OutlineExt = ".org"

// Directory names pruned without descending, in addition to hidden dirs.
var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"target":       {},
	"build":        {},
	"dist":         {},
	"__pycache__":  {},
}

// InvalidRoot describes a root directory that cannot be scanned.
type InvalidRoot struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Scanner walks root directories and filters the result set.
type Scanner struct {
	cache  *cache.Store
	logger *slog.Logger
}

// New creates a Scanner backed by the given cache store.
func New(cs *cache.Store, logger *slog.Logger) *Scanner {
	return &Scanner{cache: cs, logger: logger}
}

// ScanDirectories recursively lists outline files under each root. A root
// that cannot be read is skipped with a warning; partial failure of one root
// never aborts the whole scan.
func (s *Scanner) ScanDirectories(roots []string) []models.OutlineFile {
	var out []models.OutlineFile
	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				if p == root {
					return walkErr
				}
				s.logger.Warn("scanner: skipping unreadable path",
					slog.String("path", p), slog.String("error", walkErr.Error()))
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				name := d.Name()
				if p != root && shouldSkipDir(name) {
					return fs.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(d.Name(), OutlineExt) {
				return nil
			}
			info, infoErr := d.Info()
			if infoErr != nil {
				return nil
			}
			abs, absErr := filepath.Abs(p)
			if absErr != nil {
				abs = p
			}
			out = append(out, models.OutlineFile{
				Path:    abs,
				Name:    d.Name(),
				ModTime: info.ModTime(),
				Size:    info.Size(),
			})
			return nil
		})
		if err != nil {
			s.logger.Warn("scanner: root not scannable",
				slog.String("root", root), slog.String("error", err.Error()))
		}
	}
	return out
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	_, ok := skipDirs[name]
	return ok
}

// FilterBySize drops files above the byte threshold. Oversized files are
// excluded from parsing entirely, not truncated.
func (s *Scanner) FilterBySize(files []models.OutlineFile, maxSizeMB int) []models.OutlineFile {
	if maxSizeMB <= 0 {
		return files
	}
	limit := int64(maxSizeMB) * 1024 * 1024
	out := make([]models.OutlineFile, 0, len(files))
	for _, f := range files {
		if f.Size > limit {
			s.logger.Debug("scanner: file over size limit",
				slog.String("path", f.Path), slog.Int64("size", f.Size))
			continue
		}
		out = append(out, f)
	}
	return out
}

// SortByModTime returns a copy sorted most-recently-modified first. The sort
// is stable; this ordering is the fallback pin order when no persisted order
// exists.
func (s *Scanner) SortByModTime(files []models.OutlineFile) []models.OutlineFile {
	sorted := make([]models.OutlineFile, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ModTime.After(sorted[j].ModTime)
	})
	return sorted
}

// FilesToParse filters to the files the cache reports stale. Each file is
// checked independently, so one failing stat never blocks the others.
func (s *Scanner) FilesToParse(files []models.OutlineFile) []models.OutlineFile {
	out := make([]models.OutlineFile, 0, len(files))
	for _, f := range files {
		if s.cache.NeedsParsing(f.Path) {
			out = append(out, f)
		}
	}
	return out
}

// ValidateDirectories splits roots into usable and rejected sets. A root is
// valid iff it exists, is a directory, and is readable; rejections carry a
// reason and are never returned as errors.
func (s *Scanner) ValidateDirectories(roots []string) (valid []string, invalid []InvalidRoot) {
	for _, root := range roots {
		info, err := os.Stat(root)
		switch {
		case err != nil:
			invalid = append(invalid, InvalidRoot{Path: root, Reason: "does not exist"})
		case !info.IsDir():
			invalid = append(invalid, InvalidRoot{Path: root, Reason: "not a directory"})
		default:
			f, openErr := os.Open(root)
			if openErr != nil {
				invalid = append(invalid, InvalidRoot{Path: root, Reason: "not readable"})
				continue
			}
			f.Close()
			valid = append(valid, root)
		}
	}
	return valid, invalid
}
