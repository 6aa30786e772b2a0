package parser

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// The five timestamp forms are matched independently and exhaustively over
// a headline's combined headline-line + body text. An occurrence that fails
// to produce a valid instant is dropped with a warning, never a parse error.
var (
	rangeRe     = regexp.MustCompile(`<(\d{4}-\d{2}-\d{2})[^>]*>--<(\d{4}-\d{2}-\d{2})[^>]*>`)
	scheduledRe = regexp.MustCompile(`SCHEDULED:\s*<([^>]+)>`)
	deadlineRe  = regexp.MustCompile(`DEADLINE:\s*<([^>]+)>`)
	activeRe    = regexp.MustCompile(`<(\d{4}-\d{2}-\d{2})[^>]*>`)
	inactiveRe  = regexp.MustCompile(`\[(\d{4}-\d{2}-\d{2})[^\]]*\]`)

	dateRe     = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	timeSpanRe = regexp.MustCompile(`(\d{1,2}:\d{2})(?:-(\d{1,2}:\d{2}))?`)
)

// ExtractTimestamps returns every timestamp annotation found in text.
func ExtractTimestamps(text string) []models.Timestamp {
	var out []models.Timestamp

	for _, m := range rangeRe.FindAllString(text, -1) {
		i := strings.Index(m, ">--<")
		first := strings.Trim(m[:i+1], "<>")
		second := strings.Trim(m[i+3:], "<>")
		start, ok := build(models.TimestampRange, m, first)
		if !ok {
			continue
		}
		end, ok := build(models.TimestampRange, m, second)
		if !ok {
			continue
		}
		start.End = end.Start
		out = append(out, start)
	}

	for _, m := range scheduledRe.FindAllStringSubmatch(text, -1) {
		if ts, ok := build(models.TimestampScheduled, m[0], m[1]); ok {
			out = append(out, ts)
		}
	}

	for _, m := range deadlineRe.FindAllStringSubmatch(text, -1) {
		if ts, ok := build(models.TimestampDeadline, m[0], m[1]); ok {
			out = append(out, ts)
		}
	}

	for _, m := range activeRe.FindAllString(text, -1) {
		if ts, ok := build(models.TimestampActive, m, strings.Trim(m, "<>")); ok {
			out = append(out, ts)
		}
	}

	for _, m := range inactiveRe.FindAllString(text, -1) {
		if ts, ok := build(models.TimestampInactive, m, strings.Trim(m, "[]")); ok {
			out = append(out, ts)
		}
	}

	return out
}

// build parses the interior of a timestamp (date, optional weekday, optional
// HH:MM or HH:MM-HH:MM span) into an annotation.
func build(kind, text, inner string) (models.Timestamp, bool) {
	date := dateRe.FindString(inner)
	if date == "" {
		slog.Warn("parser: timestamp without date", slog.String("text", text))
		return models.Timestamp{}, false
	}
	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		slog.Warn("parser: invalid timestamp date",
			slog.String("text", text), slog.String("error", err.Error()))
		return models.Timestamp{}, false
	}

	ts := models.Timestamp{Type: kind, Text: text, Date: date}
	start := day
	if tm := timeSpanRe.FindStringSubmatch(inner); tm != nil {
		start = withClock(day, tm[1])
		if tm[2] != "" {
			ts.End = withClock(day, tm[2]).UnixMilli()
		}
	}
	ts.Start = start.UnixMilli()
	return ts, true
}

// withClock combines a day with an HH:MM time of day.
func withClock(day time.Time, clock string) time.Time {
	t, err := time.ParseInLocation("15:04", clock, time.Local)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.Local)
}
