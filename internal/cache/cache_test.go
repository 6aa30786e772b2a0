package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/testutil"
)

func testStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	s := NewStore(path, testutil.Logger())
	s.Initialize()
	return s, dir
}

func writeOrg(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNeedsParsing_UntrackedFile(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A\n")
	if !s.NeedsParsing(p) {
		t.Error("untracked file should need parsing")
	}
}

func TestNeedsParsing_AfterUpdate(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A :pinned:\n")
	s.Update(p, []models.Pin{{ID: "a-1"}})
	if s.NeedsParsing(p) {
		t.Error("freshly updated file should not need parsing")
	}
}

func TestNeedsParsing_AfterModification(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A\n")
	s.Update(p, nil)

	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(p, future, future); err != nil {
		t.Fatal(err)
	}
	if !s.NeedsParsing(p) {
		t.Error("file with newer mtime should need parsing")
	}
}

func TestNeedsParsing_VanishedFile(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A\n")
	s.Update(p, nil)
	os.Remove(p)
	if s.NeedsParsing(p) {
		t.Error("vanished file should not be queued for parsing")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	p := writeOrg(t, dir, "a.org", "* A :pinned:\n")

	s := NewStore(path, testutil.Logger())
	s.Initialize()
	s.Update(p, []models.Pin{{ID: "a-1", Content: "A", LineNumber: 1}})
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	s2 := NewStore(path, testutil.Logger())
	s2.Initialize()
	pins, ok := s2.CachedPins(p)
	if !ok {
		t.Fatal("reloaded cache missing entry")
	}
	if len(pins) != 1 || pins[0].ID != "a-1" {
		t.Errorf("pins = %v", pins)
	}
	if s2.NeedsParsing(p) {
		t.Error("unchanged file should be fresh after reload")
	}
}

func TestInitialize_CorruptFileDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, testutil.Logger())
	s.Initialize()
	if st := s.GetStats(); st.TrackedFiles != 0 {
		t.Errorf("tracked = %d, want 0 after corrupt load", st.TrackedFiles)
	}
}

func TestInitialize_VersionMismatchDiscarded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	data := `{"version":99,"lastUpdated":1,"entries":{"x":{"filePath":"x","pins":[]}}}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(path, testutil.Logger())
	s.Initialize()
	if st := s.GetStats(); st.TrackedFiles != 0 {
		t.Errorf("tracked = %d, want 0 for mismatched version", st.TrackedFiles)
	}
}

func TestClear(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A\n")
	s.Update(p, []models.Pin{{ID: "a-1"}})
	s.Clear()
	if _, ok := s.CachedPins(p); ok {
		t.Error("entry survived Clear")
	}
	if !s.NeedsParsing(p) {
		t.Error("cleared file should need parsing")
	}
}

func TestRemove(t *testing.T) {
	s, dir := testStore(t)
	p := writeOrg(t, dir, "a.org", "* A\n")
	s.Update(p, nil)
	s.Remove(p)
	if _, ok := s.CachedPins(p); ok {
		t.Error("entry survived Remove")
	}
}

func TestCleanup_DropsVanishedKeepsLiving(t *testing.T) {
	s, dir := testStore(t)
	alive := writeOrg(t, dir, "alive.org", "* A\n")
	gone := writeOrg(t, dir, "gone.org", "* B\n")
	s.Update(alive, nil)
	s.Update(gone, nil)
	os.Remove(gone)

	s.Cleanup()

	if _, ok := s.CachedPins(alive); !ok {
		t.Error("living entry dropped by Cleanup")
	}
	if _, ok := s.CachedPins(gone); ok {
		t.Error("vanished entry survived Cleanup")
	}
}

func TestSave_SkipsWhenClean(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")
	s := NewStore(path, testutil.Logger())
	s.Initialize()
	if err := s.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("clean store should not write a cache file")
	}
}

func TestGetStats(t *testing.T) {
	s, dir := testStore(t)
	a := writeOrg(t, dir, "a.org", "* A\n")
	b := writeOrg(t, dir, "b.org", "* B\n")
	s.Update(a, []models.Pin{{ID: "a-1"}, {ID: "a-2"}})
	s.Update(b, []models.Pin{{ID: "b-1"}})

	st := s.GetStats()
	if st.TrackedFiles != 2 {
		t.Errorf("tracked = %d, want 2", st.TrackedFiles)
	}
	if st.TotalPins != 3 {
		t.Errorf("pins = %d, want 3", st.TotalPins)
	}
}
