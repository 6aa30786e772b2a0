// Package parser extracts headlines, property drawers, and timestamps from
// org outline files and determines which headlines are pinned.
package parser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/models"
)

// Property drawer delimiters, matched on trimmed lines.
const (
	drawerOpen  = ":PROPERTIES:"
	drawerClose = ":END:"
)

var (
	headlineRe = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	tagGroupRe = regexp.MustCompile(`\s+(:[A-Za-z0-9_@#%:]+:)\s*$`)
	propertyRe = regexp.MustCompile(`^:([^:\s][^:]*):\s*(.*)$`)
)

// Result holds the output of parsing one outline file.
type Result struct {
	Headlines []models.Headline
	Pinned    []models.Headline
}

// ParseFile reads path and parses its outline structure. A file that cannot
// be read fails here for that file only; callers continue with the rest.
func ParseFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// line classifier states
type state int

const (
	stateOutside state = iota // before the first headline
	stateBody                 // accumulating a headline's free text
	stateDrawer               // inside a property drawer
)

// Parse runs a single forward pass over content. Encountering a headline
// always closes the previous one; end of input closes the last open headline
// through the same path.
func Parse(content string) *Result {
	lines := strings.Split(content, "\n")
	res := &Result{}

	var cur *models.Headline
	var body []string
	st := stateOutside

	closeCurrent := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.Join(body, "\n")
		cur.Timestamps = ExtractTimestamps(cur.Raw + "\n" + cur.Body)
		res.Headlines = append(res.Headlines, *cur)
		if cur.Pinned() {
			res.Pinned = append(res.Pinned, *cur)
		}
		cur = nil
		body = nil
	}

	for i, line := range lines {
		if m := headlineRe.FindStringSubmatch(line); m != nil {
			closeCurrent()
			h := parseHeadline(m, line, i+1)
			cur = &h
			st = stateBody
			continue
		}

		trimmed := strings.TrimSpace(line)

		switch st {
		case stateOutside:
			// Lines before the first headline are discarded.
			continue

		case stateDrawer:
			if trimmed == drawerClose {
				st = stateBody
				continue
			}
			if m := propertyRe.FindStringSubmatch(trimmed); m != nil {
				cur.Properties[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
			}
			// Non-matching lines inside a drawer are ignored.
			continue

		case stateBody:
			if trimmed == drawerOpen {
				st = stateDrawer
				continue
			}
			body = append(body, line)
		}
	}

	closeCurrent()
	return res
}

// parseHeadline splits a matched headline line into level, TODO keyword,
// title, and trailing tag group.
func parseHeadline(m []string, raw string, lineNo int) models.Headline {
	h := models.Headline{
		Level:      len(m[1]),
		LineNumber: lineNo,
		Raw:        raw,
		Properties: make(map[string]string),
	}

	rest := m[2]
	for _, kw := range models.TodoKeywords {
		if strings.HasPrefix(rest, kw+" ") {
			h.Todo = kw
			rest = strings.TrimSpace(rest[len(kw):])
			break
		}
	}

	if tm := tagGroupRe.FindStringSubmatchIndex(rest); tm != nil {
		h.Tags = splitTags(rest[tm[2]:tm[3]])
		rest = rest[:tm[0]]
	}

	h.Title = strings.TrimSpace(rest)
	return h
}

// splitTags turns ":tag1:tag2:" into its tag values.
func splitTags(group string) []string {
	var out []string
	for _, t := range strings.Split(strings.Trim(group, ":"), ":") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
