// Package models defines the domain types for Raido.
package models

import (
	"strings"
	"time"
)

// PinnedMarker is the tag value / property key that marks a headline pinned.
// Both forms are matched case-insensitively.
const PinnedMarker = "pinned"

// TodoKeywords is the closed set of TODO states recognised on headlines.
var TodoKeywords = []string{"TODO", "NEXT", "DONE", "WAITING", "CANCELED"}

// Timestamp kinds.
const (
	TimestampActive    = "active"
	TimestampInactive  = "inactive"
	TimestampScheduled = "scheduled"
	TimestampDeadline  = "deadline"
	TimestampRange     = "range"
)

// OutlineFile is a discovered org file. It is recomputed on every scan and
// never persisted.
type OutlineFile struct {
	Path    string    // absolute path
	Name    string    // base name
	ModTime time.Time
	Size    int64
}

// Timestamp is one timestamp annotation extracted from a headline or its body.
type Timestamp struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Date  string `json:"date"`            // ISO date of the start instant
	Start int64  `json:"start,omitempty"` // epoch ms
	End   int64  `json:"end,omitempty"`   // epoch ms, set for ranges and time spans
}

// Headline is one outline node produced by a single parse pass. It is
// discarded after pin extraction unless it is pinned, in which case its
// fields are projected into a Pin.
type Headline struct {
	Level      int               // count of leading stars
	Todo       string            // empty when no TODO keyword present
	Title      string
	Tags       []string
	Properties map[string]string // drawer keys, case preserved
	LineNumber int               // 1-based line of the headline marker
	Raw        string            // the headline line as it appears in the file
	Body       string            // free text until the next headline
	Timestamps []Timestamp
}

// Pinned reports whether the headline carries a pinned marker, either as a
// tag or as a property key, compared case-insensitively.
func (h *Headline) Pinned() bool {
	for k := range h.Properties {
		if strings.EqualFold(k, PinnedMarker) {
			return true
		}
	}
	for _, t := range h.Tags {
		if strings.EqualFold(t, PinnedMarker) {
			return true
		}
	}
	return false
}

// Pin is the externally visible unit published to consumers. The JSON field
// names are part of the persisted cache contract and must not change within
// a schema version.
type Pin struct {
	ID              string      `json:"id"`
	Content         string      `json:"content"`
	LineNumber      int         `json:"lineNumber"`
	Timestamp       int64       `json:"timestamp"` // owning file's mtime, epoch ms
	FilePath        string      `json:"filePath,omitempty"`
	SourceFile      string      `json:"sourceFile,omitempty"`
	OrgHeadline     string      `json:"orgHeadline,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	DetailedContent string      `json:"detailedContent,omitempty"`
	OrgTimestamps   []Timestamp `json:"orgTimestamps,omitempty"`
	SortPosition    *int        `json:"sortPosition,omitempty"`
}

// ScanResult is the outcome of one scan pass. Immutable once produced; the
// most recent one is retained for inspection.
type ScanResult struct {
	TotalFiles  int      `json:"totalFiles"`
	ParsedFiles int      `json:"parsedFiles"`
	PinnedItems int      `json:"pinnedItems"`
	Errors      []string `json:"errors"`
	DurationMS  int64    `json:"durationMs"`
}
