package staging

import (
	"os"
	"path/filepath"
	"testing"
)

var renditions = []string{"720p", "480p", "240p"}

func TestAcquireCreatesTree(t *testing.T) {
	m := NewManager(t.TempDir())
	ws, err := m.Acquire("abc123", renditions)
	if err != nil {
		t.Fatal(err)
	}
	dirs := []string{ws.RawDir, ws.OutputDir}
	for _, name := range renditions {
		dirs = append(dirs, ws.RenditionDir(name))
	}
	for _, d := range dirs {
		info, err := os.Stat(d)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", d, err)
		}
	}
	if filepath.Base(ws.Dir) != "abc123" {
		t.Errorf("workspace dir %s is not scoped by job id", ws.Dir)
	}
}

func TestAcquireIsolatesJobs(t *testing.T) {
	m := NewManager(t.TempDir())
	a, err := m.Acquire("job-a", renditions)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Acquire("job-b", renditions)
	if err != nil {
		t.Fatal(err)
	}
	if a.Dir == b.Dir {
		t.Fatalf("concurrent jobs share a staging path: %s", a.Dir)
	}
	if err := a.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(b.OutputDir); err != nil {
		t.Errorf("cleaning job-a removed job-b's tree: %v", err)
	}
}

func TestAcquireWipesStaleTree(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)
	stale := filepath.Join(root, "abc123", "output", "720p", "segment000.ts")
	if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := m.Acquire("abc123", renditions); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale segment survived re-acquisition")
	}
}

func TestAcquireRejectsBadIDs(t *testing.T) {
	m := NewManager(t.TempDir())
	for _, id := range []string{"", "../escape", "a/b"} {
		if _, err := m.Acquire(id, renditions); err == nil {
			t.Errorf("Acquire(%q) should fail", id)
		}
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	m := NewManager(t.TempDir())
	ws, err := m.Acquire("abc123", renditions)
	if err != nil {
		t.Fatal(err)
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Dir); !os.IsNotExist(err) {
		t.Error("staging tree still exists after cleanup")
	}
	if err := ws.Cleanup(); err != nil {
		t.Errorf("second cleanup returned error: %v", err)
	}
}
