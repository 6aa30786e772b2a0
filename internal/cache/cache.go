// Package cache persists per-file parse results keyed by modification time,
// so unchanged files are never re-parsed across scans.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/models"
)

// SchemaVersion of the persisted cache file. A file with any other version
// is discarded and the cache starts empty.
const SchemaVersion = 1

// Entry is the cached parse result for a single file.
type Entry struct {
	FilePath     string       `json:"filePath"`
	LastModified int64        `json:"lastModified"` // epoch ms at last successful parse
	LastParsed   int64        `json:"lastParsed"`   // epoch ms wall clock of that parse
	ContentHash  string       `json:"contentHash,omitempty"`
	Pins         []models.Pin `json:"pins"`
}

// Stats summarises the cache contents.
type Stats struct {
	TrackedFiles int   `json:"trackedFiles"`
	TotalPins    int   `json:"totalPins"`
	LastUpdated  int64 `json:"lastUpdated"` // epoch ms
}

type fileFormat struct {
	Version     int              `json:"version"`
	LastUpdated int64            `json:"lastUpdated"`
	Entries     map[string]Entry `json:"entries"`
}

// Store tracks per-file cache entries and persists them as JSON.
type Store struct {
	path   string
	logger *slog.Logger

	mu          sync.Mutex
	entries     map[string]Entry
	lastUpdated int64
	dirty       bool
}

// NewStore creates a Store persisted at path. Call Initialize before use.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}
}

// Initialize loads the persisted cache. A missing, unreadable, or corrupt
// file falls back to an empty cache; this is never a fatal error.
func (s *Store) Initialize() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("cache: read failed, starting empty",
				slog.String("path", s.path), slog.String("error", err.Error()))
		}
		return
	}

	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil || ff.Version != SchemaVersion {
		s.logger.Warn("cache: corrupt or mismatched cache discarded",
			slog.String("path", s.path), slog.Int("version", ff.Version))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpdated = ff.LastUpdated
	if ff.Entries != nil {
		s.entries = ff.Entries
	}
}

// NeedsParsing reports whether path must be re-parsed. A vanished file is
// simply dropped (false); any other stat failure fails open to true.
func (s *Store) NeedsParsing(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return !errors.Is(err, os.ErrNotExist)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		return true
	}
	return info.ModTime().UnixMilli() > e.LastModified
}

// CachedPins returns the stored pins for path, and whether an entry exists.
func (s *Store) CachedPins(path string) ([]models.Pin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		return nil, false
	}
	return e.Pins, true
}

// Update re-stats the file and stores a fresh entry with the given pins.
// A failed stat skips the update silently; the file may have disappeared
// mid-scan and is reported at the call site.
func (s *Store) Update(path string, pins []models.Pin) {
	info, err := os.Stat(path)
	if err != nil {
		s.logger.Debug("cache: stat failed, skipping update",
			slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	var hash string
	if data, readErr := os.ReadFile(path); readErr == nil {
		hash = checksum.Sum(data)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = Entry{
		FilePath:     path,
		LastModified: info.ModTime().UnixMilli(),
		LastParsed:   time.Now().UnixMilli(),
		ContentHash:  hash,
		Pins:         pins,
	}
	s.dirty = true
}

// Remove deletes the entry for path if present.
func (s *Store) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[path]; !ok {
		return
	}
	delete(s.entries, path)
	s.dirty = true
}

// Clear drops every entry, forcing the next scan to re-parse everything.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return
	}
	s.entries = make(map[string]Entry)
	s.dirty = true
}

// Save writes the cache to disk, but only when something changed since the
// last save. Safe to call after every scan.
func (s *Store) Save() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.lastUpdated = time.Now().UnixMilli()
	ff := fileFormat{
		Version:     SchemaVersion,
		LastUpdated: s.lastUpdated,
		Entries:     s.entries,
	}
	data, err := json.Marshal(ff)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return err
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Cleanup drops entries whose file no longer exists on disk. Intended to run
// at shutdown, not during scans, so transient inaccessibility is not punished.
func (s *Store) Cleanup() {
	s.mu.Lock()
	paths := make([]string, 0, len(s.entries))
	for p := range s.entries {
		paths = append(paths, p)
	}
	s.mu.Unlock()

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			s.Remove(p)
		}
	}
}

// GetStats summarises the current cache contents.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{TrackedFiles: len(s.entries), LastUpdated: s.lastUpdated}
	for _, e := range s.entries {
		st.TotalPins += len(e.Pins)
	}
	return st
}
