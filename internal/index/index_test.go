package index

import (
	"os"
	"testing"

	"github.com/starford/raido/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePins() []models.Pin {
	return []models.Pin{
		{ID: "tasks-1", Content: "Buy milk", FilePath: "/n/tasks.org", LineNumber: 1,
			Tags: []string{"pinned", "errand"}, DetailedContent: "two litres", Timestamp: 100},
		{ID: "tasks-5", Content: "Ship release", FilePath: "/n/tasks.org", LineNumber: 5,
			Tags: []string{"pinned", "work"}, DetailedContent: "cut the branch", Timestamp: 200},
		{ID: "notes-2", Content: "Standup notes", FilePath: "/n/notes.org", LineNumber: 2,
			Tags: []string{"pinned"}, DetailedContent: "milk the updates", Timestamp: 300},
	}
}

func TestRebuildAndCount(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	n, err := db.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
}

func TestRebuild_ReplacesPreviousSet(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}
	if err := db.Rebuild(samplePins()[:1]); err != nil {
		t.Fatal(err)
	}
	n, _ := db.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1 after rebuild", n)
	}
}

func TestSearch_MatchesContentAndDetail(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}

	results, err := db.Search("milk", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// "Buy milk" in content and "milk the updates" in detail.
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2: %+v", len(results), results)
	}
	for _, r := range results {
		if r.ID != "tasks-1" && r.ID != "notes-2" {
			t.Errorf("unexpected hit %+v", r)
		}
	}
}

func TestSearch_MatchesTags(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}
	results, err := db.Search("errand", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].ID != "tasks-1" {
		t.Errorf("results = %+v", results)
	}
}

func TestSearch_LimitApplied(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}
	results, err := db.Search("pinned", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Errorf("results = %d, want 2 with limit", len(results))
	}
}

func TestSearch_NoMatches(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}
	results, err := db.Search("zzz-nothing", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want none", results)
	}
}

func TestRebuild_EmptySet(t *testing.T) {
	db := testDB(t)
	if err := db.Rebuild(samplePins()); err != nil {
		t.Fatal(err)
	}
	if err := db.Rebuild(nil); err != nil {
		t.Fatalf("rebuild empty: %v", err)
	}
	n, _ := db.Count()
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}
