package pinservice

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/parser"
)

// RemovePin unpins the entry with the given id by rewriting the marking in
// its source file: the pinned tag token is stripped from the headline line
// and the pinned property line is deleted from the drawer. Every other line
// is preserved byte for byte. On success the file's cache entry is dropped
// and an incremental scan is triggered so the published set reflects the
// file's true state.
func (s *Service) RemovePin(id string) error {
	s.mu.Lock()
	var pin models.Pin
	found := false
	for _, p := range s.pins {
		if p.ID == id {
			pin = p
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return fmt.Errorf("remove pin %q: %w", id, apperr.ErrNotFound)
	}
	if pin.FilePath == "" || pin.LineNumber <= 0 {
		return fmt.Errorf("remove pin %q: no source location recorded: %w", id, apperr.ErrConflict)
	}

	data, err := os.ReadFile(pin.FilePath)
	if err != nil {
		return fmt.Errorf("remove pin %q: read %s: %w", id, pin.FilePath, err)
	}
	lines := strings.Split(string(data), "\n")
	if pin.LineNumber > len(lines) {
		return fmt.Errorf("remove pin %q: line %d beyond end of %s: %w",
			id, pin.LineNumber, pin.FilePath, apperr.ErrConflict)
	}

	modified := false
	hi := pin.LineNumber - 1
	if stripped, ok := parser.StripPinnedTag(lines[hi]); ok {
		lines[hi] = stripped
		modified = true
	}
	if rewritten, ok := parser.RemovePinnedProperty(lines, hi); ok {
		lines = rewritten
		modified = true
	}

	if modified {
		// The file write and the cache invalidation are two separate steps.
		// A crash in between leaves the file correctly edited and the cache
		// stale; the next scan's mtime check re-parses the file, so the worst
		// case is one extra parse, never a wrong pin set.
		if err := atomic.WriteFile(pin.FilePath, strings.NewReader(strings.Join(lines, "\n"))); err != nil {
			return fmt.Errorf("remove pin %q: write %s: %w", id, pin.FilePath, err)
		}
		s.cache.Remove(pin.FilePath)
		s.logger.Info("pin removed",
			slog.String("id", id), slog.String("path", pin.FilePath), slog.Int("line", pin.LineNumber))
	} else {
		// Neither marking was found: the index is out of date for this file.
		// Drop the pin from memory and republish, but leave file and cache alone.
		s.logger.Warn("pin had no marking in source, dropping from memory",
			slog.String("id", id), slog.String("path", pin.FilePath))
	}

	s.mu.Lock()
	kept := make([]models.Pin, 0, len(s.pins))
	for _, p := range s.pins {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.pins = kept
	out := append([]models.Pin(nil), kept...)
	ev := s.events
	s.mu.Unlock()

	if ev != nil {
		ev.PinsUpdated(out)
	}

	if modified {
		// May no-op if a scan is already in flight; the in-memory drop keeps
		// consumers consistent until the next successful scan.
		s.Scan()
	}
	return nil
}
