package parser

import (
	"strings"

	"github.com/starford/raido/internal/models"
)

// StripPinnedTag removes the pinned tag token from a headline line. The tag
// group is rebuilt from the remaining tags, so no dangling colons are left
// behind; when pinned was the only tag the whole group goes. Returns the
// line unchanged (false) when it carries no pinned tag.
func StripPinnedTag(line string) (string, bool) {
	m := tagGroupRe.FindStringSubmatchIndex(line)
	if m == nil {
		return line, false
	}

	var kept []string
	removed := false
	for _, t := range splitTags(line[m[2]:m[3]]) {
		if strings.EqualFold(t, models.PinnedMarker) {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return line, false
	}
	if len(kept) == 0 {
		return line[:m[0]], true
	}
	return line[:m[0]] + " :" + strings.Join(kept, ":") + ":", true
}

// RemovePinnedProperty deletes the pinned property line from the drawer that
// belongs to the headline at headlineIdx (0-based). The search is bounded by
// the next headline; a drawer found past one belongs to someone else. When
// deleting the property leaves only the drawer markers, the drawer itself is
// removed. Returns the lines unchanged (false) when nothing was deleted.
func RemovePinnedProperty(lines []string, headlineIdx int) ([]string, bool) {
	open := -1
	for i := headlineIdx + 1; i < len(lines); i++ {
		if headlineRe.MatchString(lines[i]) {
			return lines, false
		}
		if strings.TrimSpace(lines[i]) == drawerOpen {
			open = i
			break
		}
	}
	if open < 0 {
		return lines, false
	}

	closeIdx := -1
	pinnedLine := -1
	for i := open + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == drawerClose {
			closeIdx = i
			break
		}
		if headlineRe.MatchString(lines[i]) {
			// Unterminated drawer; leave the file alone.
			return lines, false
		}
		if pinnedLine < 0 {
			if m := propertyRe.FindStringSubmatch(trimmed); m != nil &&
				strings.EqualFold(strings.TrimSpace(m[1]), models.PinnedMarker) {
				pinnedLine = i
			}
		}
	}
	if closeIdx < 0 || pinnedLine < 0 {
		return lines, false
	}

	out := make([]string, 0, len(lines)-1)
	out = append(out, lines[:pinnedLine]...)
	out = append(out, lines[pinnedLine+1:]...)
	closeIdx--

	if closeIdx == open+1 {
		trimmed := make([]string, 0, len(out)-2)
		trimmed = append(trimmed, out[:open]...)
		trimmed = append(trimmed, out[closeIdx+1:]...)
		out = trimmed
	}
	return out, true
}
