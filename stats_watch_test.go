package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatWatcherReportsYAMLEdits(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewStatWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	path := filepath.Join(dir, "archetypes.yaml")
	if err := os.WriteFile(path, []byte("archetypes: {}\n"), 0o644); err != nil {
		t.Fatalf("write stats file: %v", err)
	}

	select {
	case got := <-watcher.Events:
		if filepath.Clean(got) != filepath.Clean(path) {
			t.Fatalf("unexpected event path %q", got)
		}
	case err := <-watcher.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatalf("no event for the edited stat file")
	}
}

func TestStatWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	watcher, err := NewStatWatcher(dir)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case got := <-watcher.Events:
		t.Fatalf("unexpected event for %q", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestIsStatFile(t *testing.T) {
	for path, want := range map[string]bool{
		"config/archetypes.yaml": true,
		"config/archetypes.YML":  true,
		"config/archetypes.json": false,
		"README.md":              false,
	} {
		if got := isStatFile(path); got != want {
			t.Fatalf("isStatFile(%q) = %v, want %v", path, got, want)
		}
	}
}
