// Package pinservice drives scan passes, merges parsed and cached pins,
// applies the persisted display order, and owns the published pin set.
package pinservice

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/order"
	"github.com/starford/raido/internal/parser"
	"github.com/starford/raido/internal/scanner"
)

// Events receives publish notifications. Implementations must not block;
// they are invoked from the scan path.
type Events interface {
	PinsUpdated(pins []models.Pin)
	ScanCompleted(res models.ScanResult)
}

// Stats combines the last scan outcome with cache bookkeeping.
type Stats struct {
	LastScan models.ScanResult `json:"lastScan"`
	Cache    cache.Stats       `json:"cache"`
	Roots    []string          `json:"roots"`
}

// Service is the synchronization orchestrator. One instance owns all
// mutable scan state; the scanning flag is the re-entrancy guard — a scan
// requested while one is in flight returns the previous result instead of
// queueing.
type Service struct {
	scanner       *scanner.Scanner
	cache         *cache.Store
	order         order.Provider
	logger        *slog.Logger
	events        Events
	maxFileSizeMB int

	mu       sync.Mutex
	roots    []string
	scanning bool
	last     models.ScanResult
	pins     []models.Pin
}

// New creates the orchestrator. events may be nil; orderProvider may be nil
// when no persisted order exists.
func New(sc *scanner.Scanner, cs *cache.Store, op order.Provider, maxFileSizeMB int, logger *slog.Logger) *Service {
	return &Service{
		scanner:       sc,
		cache:         cs,
		order:         op,
		maxFileSizeMB: maxFileSizeMB,
		logger:        logger,
		last:          models.ScanResult{Errors: []string{}},
	}
}

// SetEvents registers the publish notification sink.
func (s *Service) SetEvents(ev Events) {
	s.mu.Lock()
	s.events = ev
	s.mu.Unlock()
}

// Roots returns the configured root directories.
func (s *Service) Roots() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.roots...)
}

// SetRootDirectories validates dirs, retains only the valid ones, and
// triggers an immediate scan when the resulting set is non-empty.
func (s *Service) SetRootDirectories(dirs []string) (valid []string, invalid []scanner.InvalidRoot) {
	valid, invalid = s.scanner.ValidateDirectories(dirs)
	for _, iv := range invalid {
		s.logger.Warn("pinservice: root rejected",
			slog.String("root", iv.Path), slog.String("reason", iv.Reason))
	}

	s.mu.Lock()
	s.roots = append([]string(nil), valid...)
	s.mu.Unlock()

	if len(valid) > 0 {
		s.Scan()
	}
	return valid, invalid
}

// Scan runs an incremental scan: only files the cache reports stale are
// re-parsed.
func (s *Service) Scan() models.ScanResult {
	return s.performScan(false)
}

// ScanFull clears the cache first so every file is re-parsed. This is the
// only way to pick up content changes that did not advance a file's mtime,
// and the recovery path for a corrupted cache.
func (s *Service) ScanFull() models.ScanResult {
	return s.performScan(true)
}

func (s *Service) performScan(force bool) models.ScanResult {
	s.mu.Lock()
	if s.scanning {
		prev := s.last
		s.mu.Unlock()
		return prev
	}
	s.scanning = true
	roots := append([]string(nil), s.roots...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	if len(roots) == 0 {
		// No roots configured is an empty result, not an error.
		res := models.ScanResult{Errors: []string{}}
		s.mu.Lock()
		s.last = res
		s.mu.Unlock()
		return res
	}

	start := time.Now()
	if force {
		s.cache.Clear()
	}

	files := s.scanner.ScanDirectories(roots)
	files = s.scanner.FilterBySize(files, s.maxFileSizeMB)
	files = s.scanner.SortByModTime(files)

	toParse := files
	if !force {
		toParse = s.scanner.FilesToParse(files)
	}

	parsed := make(map[string]struct{}, len(toParse))
	var pins []models.Pin
	errs := []string{}

	for _, f := range toParse {
		parsed[f.Path] = struct{}{}
		res, err := parser.ParseFile(f.Path)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", f.Path, err))
			// Keep the file's prior cached pins instead of dropping them.
			if cached, ok := s.cache.CachedPins(f.Path); ok {
				pins = append(pins, cached...)
			}
			continue
		}
		filePins := parser.ConvertToPins(f, res.Pinned)
		s.cache.Update(f.Path, filePins)
		pins = append(pins, filePins...)
	}

	for _, f := range files {
		if _, ok := parsed[f.Path]; ok {
			continue
		}
		if cached, ok := s.cache.CachedPins(f.Path); ok {
			pins = append(pins, cached...)
		}
	}

	// Base order before the persisted order is applied: newest file first.
	sort.SliceStable(pins, func(i, j int) bool {
		return pins[i].Timestamp > pins[j].Timestamp
	})

	if err := s.cache.Save(); err != nil {
		s.logger.Warn("pinservice: cache save failed", slog.String("error", err.Error()))
	}

	ordered := s.applyOrder(pins)
	result := models.ScanResult{
		TotalFiles:  len(files),
		ParsedFiles: len(parsed),
		PinnedItems: len(ordered),
		Errors:      errs,
		DurationMS:  time.Since(start).Milliseconds(),
	}

	s.mu.Lock()
	s.last = result
	s.pins = ordered
	ev := s.events
	s.mu.Unlock()

	s.logger.Info("scan completed",
		slog.Int("total_files", result.TotalFiles),
		slog.Int("parsed_files", result.ParsedFiles),
		slog.Int("pinned_items", result.PinnedItems),
		slog.Int("errors", len(result.Errors)),
		slog.Int64("duration_ms", result.DurationMS))

	if ev != nil {
		ev.PinsUpdated(append([]models.Pin(nil), ordered...))
		ev.ScanCompleted(result)
	}
	return result
}

// CurrentPins returns the last published set with the persisted order
// re-applied; the order may have changed since publication.
func (s *Service) CurrentPins() []models.Pin {
	s.mu.Lock()
	pins := append([]models.Pin(nil), s.pins...)
	s.mu.Unlock()
	return s.applyOrder(pins)
}

// LastResult returns the most recent scan result.
func (s *Service) LastResult() models.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// GetStats reports the last scan outcome, cache stats, and current roots.
func (s *Service) GetStats() Stats {
	s.mu.Lock()
	last := s.last
	roots := append([]string(nil), s.roots...)
	s.mu.Unlock()
	return Stats{LastScan: last, Cache: s.cache.GetStats(), Roots: roots}
}

// Reorder rewrites the in-memory pin list to the given id sequence. Unknown
// ids are ignored; pins absent from the sequence are appended at the end in
// their prior relative order. Pure in-memory reindex: no cache or file I/O.
func (s *Service) Reorder(ids []string) []models.Pin {
	s.mu.Lock()
	s.pins = reindex(s.pins, ids)
	out := append([]models.Pin(nil), s.pins...)
	ev := s.events
	s.mu.Unlock()

	if ev != nil {
		ev.PinsUpdated(append([]models.Pin(nil), out...))
	}
	return out
}

// applyOrder emits each pin referenced by the persisted order exactly once,
// then appends the pins the order does not know about in their existing
// (timestamp-sorted) relative order, so newly discovered pins surface at the
// end rather than getting lost.
func (s *Service) applyOrder(pins []models.Pin) []models.Pin {
	if s.order == nil {
		return pins
	}
	ids := s.order.Get()
	if len(ids) == 0 {
		return pins
	}
	return reindex(pins, ids)
}

func reindex(pins []models.Pin, ids []string) []models.Pin {
	index := make(map[string]int, len(pins))
	for i, p := range pins {
		index[p.ID] = i
	}
	used := make(map[string]bool, len(ids))
	out := make([]models.Pin, 0, len(pins))
	for _, id := range ids {
		if i, ok := index[id]; ok && !used[id] {
			p := pins[i]
			pos := len(out)
			p.SortPosition = &pos
			out = append(out, p)
			used[id] = true
		}
	}
	// Pins the order does not know about trail in their prior relative
	// order and carry no explicit position.
	for _, p := range pins {
		if !used[p.ID] {
			p.SortPosition = nil
			out = append(out, p)
		}
	}
	return out
}
