package parser

import (
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func localMS(y int, m time.Month, d, hh, mm int) int64 {
	return time.Date(y, m, d, hh, mm, 0, 0, time.Local).UnixMilli()
}

func byKind(ts []models.Timestamp, kind string) []models.Timestamp {
	var out []models.Timestamp
	for _, t := range ts {
		if t.Type == kind {
			out = append(out, t)
		}
	}
	return out
}

func TestExtractTimestamps_Active(t *testing.T) {
	ts := byKind(ExtractTimestamps("call home <2024-03-15 Fri>"), models.TimestampActive)
	if len(ts) != 1 {
		t.Fatalf("active = %d, want 1", len(ts))
	}
	if ts[0].Date != "2024-03-15" {
		t.Errorf("date = %q", ts[0].Date)
	}
	if ts[0].Start != localMS(2024, 3, 15, 0, 0) {
		t.Errorf("start = %d, want local midnight", ts[0].Start)
	}
	if ts[0].End != 0 {
		t.Errorf("end = %d, want 0", ts[0].End)
	}
}

func TestExtractTimestamps_ActiveWithTimeSpan(t *testing.T) {
	ts := byKind(ExtractTimestamps("<2024-03-15 Fri 10:00-11:30>"), models.TimestampActive)
	if len(ts) != 1 {
		t.Fatalf("active = %d, want 1", len(ts))
	}
	if ts[0].Start != localMS(2024, 3, 15, 10, 0) {
		t.Errorf("start = %d", ts[0].Start)
	}
	if ts[0].End != localMS(2024, 3, 15, 11, 30) {
		t.Errorf("end = %d", ts[0].End)
	}
}

func TestExtractTimestamps_Inactive(t *testing.T) {
	ts := byKind(ExtractTimestamps("logged [2024-03-15 Fri 09:05]"), models.TimestampInactive)
	if len(ts) != 1 {
		t.Fatalf("inactive = %d, want 1", len(ts))
	}
	if ts[0].Start != localMS(2024, 3, 15, 9, 5) {
		t.Errorf("start = %d", ts[0].Start)
	}
}

func TestExtractTimestamps_ScheduledAlsoMatchesActive(t *testing.T) {
	all := ExtractTimestamps("SCHEDULED: <2024-03-15 Fri>")
	if n := len(byKind(all, models.TimestampScheduled)); n != 1 {
		t.Errorf("scheduled = %d, want 1", n)
	}
	// The angle-bracket occurrence matches the active pattern independently.
	if n := len(byKind(all, models.TimestampActive)); n != 1 {
		t.Errorf("active = %d, want 1", n)
	}
}

func TestExtractTimestamps_Deadline(t *testing.T) {
	ts := byKind(ExtractTimestamps("DEADLINE: <2024-04-01 Mon 17:00>"), models.TimestampDeadline)
	if len(ts) != 1 {
		t.Fatalf("deadline = %d, want 1", len(ts))
	}
	if ts[0].Start != localMS(2024, 4, 1, 17, 0) {
		t.Errorf("start = %d", ts[0].Start)
	}
}

func TestExtractTimestamps_Range(t *testing.T) {
	all := ExtractTimestamps("offsite <2024-03-15 Fri>--<2024-03-17 Sun>")
	rng := byKind(all, models.TimestampRange)
	if len(rng) != 1 {
		t.Fatalf("range = %d, want 1", len(rng))
	}
	if rng[0].Start != localMS(2024, 3, 15, 0, 0) {
		t.Errorf("start = %d", rng[0].Start)
	}
	if rng[0].End != localMS(2024, 3, 17, 0, 0) {
		t.Errorf("end = %d", rng[0].End)
	}
	// Each endpoint is also an active timestamp on its own.
	if n := len(byKind(all, models.TimestampActive)); n != 2 {
		t.Errorf("active = %d, want 2", n)
	}
}

func TestExtractTimestamps_InvalidDateDropped(t *testing.T) {
	all := ExtractTimestamps("<2024-13-45 Xxx>")
	if len(all) != 0 {
		t.Errorf("timestamps = %v, want none for an impossible date", all)
	}
}

func TestExtractTimestamps_None(t *testing.T) {
	if ts := ExtractTimestamps("plain text, no annotations"); len(ts) != 0 {
		t.Errorf("timestamps = %v, want none", ts)
	}
}
