package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/cache"
	"github.com/starford/raido/internal/pinservice"
	"github.com/starford/raido/internal/scanner"
	"github.com/starford/raido/internal/testutil"
)

func watchTestEnv(t *testing.T) (*pinservice.Service, string) {
	t.Helper()
	root := testutil.TestRoot(t, map[string]string{
		"seed.org": "* Seed :pinned:\n",
	})
	cs := cache.NewStore(filepath.Join(t.TempDir(), "cache.json"), testutil.Logger())
	cs.Initialize()
	svc := pinservice.New(scanner.New(cs, testutil.Logger()), cs, nil, 10, testutil.Logger())
	svc.SetRootDirectories([]string{root})
	return svc, root
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestRun_NewOutlineFileTriggersScan(t *testing.T) {
	svc, root := watchTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Run(ctx, []string{root}, svc, testutil.Logger())
	}()

	// Give the watcher time to register the root.
	time.Sleep(100 * time.Millisecond)

	p := filepath.Join(root, "fresh.org")
	if err := os.WriteFile(p, []byte("* Fresh :pinned:\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		for _, pin := range svc.CurrentPins() {
			if pin.ID == "fresh-1" {
				return true
			}
		}
		return false
	}, "new outline file never appeared in the pin set")
}

func TestRun_NonOutlineFileIgnored(t *testing.T) {
	svc, root := watchTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Run(ctx, []string{root}, svc, testutil.Logger())
	}()

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("* Not org :pinned:\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// No scan should fire for a .txt file; the pin set stays at the seed.
	time.Sleep(time.Second)
	if got := len(svc.CurrentPins()); got != 1 {
		t.Errorf("pins = %d, want 1", got)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	svc, root := watchTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, []string{root}, svc, testutil.Logger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
