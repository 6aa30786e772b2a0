package parser

import (
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func TestPinID(t *testing.T) {
	if id := PinID("/home/u/notes/tasks.org", 12); id != "tasks-12" {
		t.Errorf("id = %q, want tasks-12", id)
	}
	if id := PinID("inbox.org", 1); id != "inbox-1" {
		t.Errorf("id = %q, want inbox-1", id)
	}
}

func TestConvertToPins(t *testing.T) {
	mod := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	file := models.OutlineFile{
		Path:    "/notes/tasks.org",
		Name:    "tasks.org",
		ModTime: mod,
	}
	pinned := []models.Headline{{
		Title:      "Buy milk",
		Tags:       []string{"pinned", "errand"},
		LineNumber: 3,
		Raw:        "* Buy milk :pinned:errand:",
		Body:       "  2 litres  \n",
	}}

	pins := ConvertToPins(file, pinned)
	if len(pins) != 1 {
		t.Fatalf("pins = %d, want 1", len(pins))
	}
	p := pins[0]
	if p.ID != "tasks-3" {
		t.Errorf("id = %q, want tasks-3", p.ID)
	}
	if p.Timestamp != mod.UnixMilli() {
		t.Errorf("timestamp = %d, want file mtime", p.Timestamp)
	}
	if p.Content != "Buy milk" {
		t.Errorf("content = %q", p.Content)
	}
	if p.DetailedContent != "2 litres" {
		t.Errorf("detail = %q, want trimmed body", p.DetailedContent)
	}
	if p.SourceFile != "tasks.org" || p.FilePath != "/notes/tasks.org" {
		t.Errorf("source = %q, path = %q", p.SourceFile, p.FilePath)
	}
}
