package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/voidworks/modsync/internal/testutil"
)

func TestSnapshot_CollectsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, dir, "a.txt", []byte("hello"))
	if err := os.MkdirAll(filepath.Join(dir, "mods"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	testutil.CreateTestFile(t, filepath.Join(dir, "mods"), "b.jar", []byte("world"))

	scanner := NewDefaultScanner()
	snap, err := scanner.Snapshot(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if len(snap) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(snap))
	}

	entry, ok := snap["mods/b.jar"]
	if !ok {
		t.Fatal("Expected slash-normalized key mods/b.jar")
	}
	if entry.Size != 5 {
		t.Errorf("Expected size 5, got %d", entry.Size)
	}
	if entry.Digest == "" {
		t.Error("Expected non-empty digest")
	}
	if entry.AbsolutePath != filepath.Join(dir, "mods", "b.jar") {
		t.Errorf("Unexpected absolute path: %s", entry.AbsolutePath)
	}
}

func TestSnapshot_MissingBasePath(t *testing.T) {
	scanner := NewDefaultScanner()

	snap, err := scanner.Snapshot(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 0 {
		t.Errorf("Expected empty snapshot for missing tree, got %d entries", len(snap))
	}
}

func TestSnapshot_ExclusionsFilterSource(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, dir, "keep.txt", []byte("keep"))
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	testutil.CreateTestFile(t, filepath.Join(dir, "config"), "local.cfg", []byte("private"))

	scanner := NewDefaultScanner()

	// Backslash form must match after normalization
	snap, err := scanner.Snapshot(context.Background(), dir, []string{"config\\local.cfg"})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if _, ok := snap["config/local.cfg"]; ok {
		t.Error("Excluded path must never appear in the snapshot")
	}
	if _, ok := snap["keep.txt"]; !ok {
		t.Error("Non-excluded path missing from snapshot")
	}
}

func TestSnapshot_ExclusionsAreCaseSensitive(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, dir, "File.txt", []byte("x"))

	scanner := NewDefaultScanner()
	snap, err := scanner.Snapshot(context.Background(), dir, []string{"file.txt"})
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	if _, ok := snap["File.txt"]; !ok {
		t.Error("Exclusion matching must be case-sensitive")
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, dir, "a.txt", []byte("one"))
	testutil.CreateTestFile(t, dir, "b.txt", []byte("two"))

	scanner := NewDefaultScanner()

	first, err := scanner.Snapshot(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("first Snapshot failed: %v", err)
	}
	second, err := scanner.Snapshot(context.Background(), dir, nil)
	if err != nil {
		t.Fatalf("second Snapshot failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Snapshots of an unmodified tree must be identical")
	}
}

func TestSnapshot_ContextCancellation(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateTestFile(t, dir, "a.txt", []byte("one"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scanner := NewDefaultScanner()
	if _, err := scanner.Snapshot(ctx, dir, nil); err == nil {
		t.Error("Expected error for cancelled context")
	}
}
