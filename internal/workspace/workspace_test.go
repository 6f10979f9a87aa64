package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gavel/internal/logging"
)

func TestCreateAndRemove(t *testing.T) {
	manager, err := NewManager(filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatal(err)
	}

	dir, err := manager.Create("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("workspace not created: %v", err)
	}

	if err := manager.Remove(dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("workspace not removed")
	}
}

func TestRemoveRefusesOutsideRoot(t *testing.T) {
	base := t.TempDir()
	manager, err := NewManager(filepath.Join(base, "staging"))
	if err != nil {
		t.Fatal(err)
	}

	victim := filepath.Join(base, "elsewhere")
	if err := os.MkdirAll(victim, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := manager.Remove(victim); err == nil {
		t.Fatal("expected refusal for path outside root")
	}
	if err := manager.Remove(manager.Root()); err == nil {
		t.Fatal("expected refusal for removing root itself")
	}
}

func TestCleanStale(t *testing.T) {
	manager, err := NewManager(filepath.Join(t.TempDir(), "staging"))
	if err != nil {
		t.Fatal(err)
	}

	stale, err := manager.Create("old-job")
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatal(err)
	}
	fresh, err := manager.Create("new-job")
	if err != nil {
		t.Fatal(err)
	}

	result := manager.CleanStale(context.Background(), 24*time.Hour, logging.NewNop())
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("unexpected removals: %v", result.Removed)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatal("fresh workspace must survive the sweep")
	}
}
