package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/testutil"
)

type stubHistory struct {
	histories map[string]*domain.SyncHistory
}

func (s *stubHistory) Get(name string) *domain.SyncHistory {
	if h, ok := s.histories[name]; ok {
		return h
	}
	return &domain.SyncHistory{PackName: name, Files: map[string]domain.FileRecord{}}
}

func emptyHistory() *stubHistory {
	return &stubHistory{histories: map[string]*domain.SyncHistory{}}
}

func buildPlan(t *testing.T, sourceDir, targetDir string, hist HistoryReader) (*domain.SyncPlan, domain.SnapshotPayload) {
	t.Helper()

	p := NewDefaultPlanner()
	pack := domain.ModpackInfo{Name: "testpack", Path: sourceDir}
	plan, payload, err := p.Build(context.Background(), pack, targetDir, hist)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return plan, payload
}

func TestBuild_NewFilesBecomeAdds(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, sourceDir, map[string]string{
		"a.txt":      "hello",
		"mods/b.jar": "world",
	})

	plan, payload := buildPlan(t, sourceDir, targetDir, emptyHistory())

	if len(plan.Adds) != 2 || len(plan.Updates) != 0 || len(plan.Removals) != 0 {
		t.Fatalf("Expected 2 adds only, got adds=%d updates=%d removals=%d",
			len(plan.Adds), len(plan.Updates), len(plan.Removals))
	}

	add := plan.Adds[0]
	if add.RelativePath != "a.txt" {
		t.Errorf("Unexpected relative path: %s", add.RelativePath)
	}
	if add.SourcePath != filepath.Join(sourceDir, "a.txt") {
		t.Errorf("Add must carry the source path, got %s", add.SourcePath)
	}
	if add.TargetPath != filepath.Join(targetDir, "a.txt") {
		t.Errorf("Add target must be targetRoot/relativePath, got %s", add.TargetPath)
	}
	if add.Reason != ReasonNewFile {
		t.Errorf("Unexpected reason: %s", add.Reason)
	}

	if len(payload) != 2 {
		t.Errorf("Payload must cover the full source snapshot, got %d entries", len(payload))
	}
	if payload["mods/b.jar"].Hash == "" || payload["mods/b.jar"].Size != "5" {
		t.Errorf("Unexpected payload record: %+v", payload["mods/b.jar"])
	}
}

func TestBuild_IdenticalDigestsAreSkipped(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, sourceDir, map[string]string{"same.txt": "identical"})
	testutil.CreateTree(t, targetDir, map[string]string{"same.txt": "identical"})

	plan, _ := buildPlan(t, sourceDir, targetDir, emptyHistory())

	if !plan.IsEmpty() {
		t.Errorf("Plan should be empty: adds=%d updates=%d removals=%d",
			len(plan.Adds), len(plan.Updates), len(plan.Removals))
	}
	if len(plan.Skipped) != 1 || plan.Skipped[0].RelativePath != "same.txt" {
		t.Errorf("Identical file must land in skipped, got %+v", plan.Skipped)
	}
}

func TestBuild_DifferingContentBecomesUpdate(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, sourceDir, map[string]string{"a.txt": "hello"})
	testutil.CreateTree(t, targetDir, map[string]string{"a.txt": "goodbye"})

	plan, _ := buildPlan(t, sourceDir, targetDir, emptyHistory())

	if len(plan.Updates) != 1 {
		t.Fatalf("Expected 1 update, got %d", len(plan.Updates))
	}
	if plan.Updates[0].Reason != ReasonContentDiffer {
		t.Errorf("Unexpected reason: %s", plan.Updates[0].Reason)
	}
	if len(plan.Adds) != 0 || len(plan.Removals) != 0 {
		t.Error("A differing path must appear only in updates")
	}
}

func TestBuild_RemovedFromSourceBecomesRemoval(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, targetDir, map[string]string{"c.txt": "old"})

	// c.txt was synced before and its target digest still matches the
	// recorded one (record uses the digest of "old").
	p := NewDefaultPlanner()
	snap, err := p.Scanner.Snapshot(context.Background(), targetDir, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	hist := &stubHistory{histories: map[string]*domain.SyncHistory{
		"testpack": {
			PackName: "testpack",
			Files: map[string]domain.FileRecord{
				"c.txt": {Hash: snap["c.txt"].Digest, Size: "3"},
			},
		},
	}}

	plan, _ := buildPlan(t, sourceDir, targetDir, hist)

	if len(plan.Removals) != 1 {
		t.Fatalf("Expected 1 removal, got %d", len(plan.Removals))
	}
	removal := plan.Removals[0]
	if removal.RelativePath != "c.txt" || removal.Reason != ReasonRemoved {
		t.Errorf("Unexpected removal: %+v", removal)
	}
	if removal.TargetPath != filepath.Join(targetDir, "c.txt") {
		t.Errorf("Unexpected removal target: %s", removal.TargetPath)
	}
}

func TestBuild_DriftBeatsDeletion(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, targetDir, map[string]string{"c.txt": "modified out of band"})

	hist := &stubHistory{histories: map[string]*domain.SyncHistory{
		"testpack": {
			PackName: "testpack",
			Files: map[string]domain.FileRecord{
				"c.txt": {Hash: "digest-recorded-at-last-sync", Size: "3"},
			},
		},
	}}

	plan, _ := buildPlan(t, sourceDir, targetDir, hist)

	if len(plan.Removals) != 0 {
		t.Error("A drifted target file must never be scheduled for deletion")
	}
	if len(plan.Updates) != 1 {
		t.Fatalf("Expected 1 drift update, got %d", len(plan.Updates))
	}
	update := plan.Updates[0]
	if update.Reason != ReasonTargetDrift {
		t.Errorf("Unexpected reason: %s", update.Reason)
	}
	if update.SourcePath != "" {
		t.Errorf("Drift update has no source, got %s", update.SourcePath)
	}
}

func TestBuild_TrackedFileGoneEverywhereProducesNothing(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()

	hist := &stubHistory{histories: map[string]*domain.SyncHistory{
		"testpack": {
			PackName: "testpack",
			Files: map[string]domain.FileRecord{
				"gone.txt": {Hash: "deadbeef"},
			},
		},
	}}

	plan, _ := buildPlan(t, sourceDir, targetDir, hist)

	if len(plan.AllChanges()) != 0 {
		t.Errorf("Expected no changes at all, got %+v", plan.AllChanges())
	}
}

func TestBuild_ExclusionsSuppressSourceFiles(t *testing.T) {
	sourceDir := t.TempDir()
	targetDir := t.TempDir()
	testutil.CreateTree(t, sourceDir, map[string]string{
		"keep.txt":          "keep",
		"config/secret.cfg": "private",
	})

	hist := &stubHistory{histories: map[string]*domain.SyncHistory{
		"testpack": {
			PackName:   "testpack",
			Files:      map[string]domain.FileRecord{},
			Exclusions: []string{"config/secret.cfg"},
		},
	}}

	plan, payload := buildPlan(t, sourceDir, targetDir, hist)

	for _, c := range plan.AllChanges() {
		if c.RelativePath == "config/secret.cfg" {
			t.Fatal("Excluded path leaked into the plan")
		}
	}
	if _, ok := payload["config/secret.cfg"]; ok {
		t.Error("Excluded path leaked into the snapshot payload")
	}
	if len(plan.Adds) != 1 || plan.Adds[0].RelativePath != "keep.txt" {
		t.Errorf("Expected only keep.txt, got %+v", plan.Adds)
	}
}

func TestBuild_MissingSourceTreeYieldsRemovalsOnly(t *testing.T) {
	targetDir := t.TempDir()
	testutil.CreateTree(t, targetDir, map[string]string{"c.txt": "old"})

	p := NewDefaultPlanner()
	snap, err := p.Scanner.Snapshot(context.Background(), targetDir, nil)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	hist := &stubHistory{histories: map[string]*domain.SyncHistory{
		"testpack": {
			PackName: "testpack",
			Files:    map[string]domain.FileRecord{"c.txt": {Hash: snap["c.txt"].Digest}},
		},
	}}

	plan, payload := buildPlan(t, filepath.Join(t.TempDir(), "absent"), targetDir, hist)

	if len(plan.Adds) != 0 || len(plan.Updates) != 0 {
		t.Error("Missing source tree must not produce adds or updates")
	}
	if len(plan.Removals) != 1 {
		t.Errorf("Expected 1 removal, got %d", len(plan.Removals))
	}
	if len(payload) != 0 {
		t.Errorf("Payload for a missing source must be empty, got %d", len(payload))
	}
}
