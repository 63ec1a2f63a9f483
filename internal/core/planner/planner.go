package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/voidworks/modsync/internal/core/snapshot"
	"github.com/voidworks/modsync/internal/domain"
)

// Reasons attached to planned changes
const (
	ReasonNewFile       = "new file"
	ReasonContentDiffer = "content differs"
	ReasonTargetDrift   = "target file changed since last sync"
	ReasonRemoved       = "removed from source"
)

// HistoryReader is the slice of the history store the planner needs
type HistoryReader interface {
	Get(name string) *domain.SyncHistory
}

// Planner builds sync plans from source/target/history state
type Planner interface {
	// Build snapshots both trees and classifies every relevant path.
	// Alongside the plan it returns the payload to persist into history
	// after a successful execution.
	Build(ctx context.Context, pack domain.ModpackInfo, targetPath string, hist HistoryReader) (*domain.SyncPlan, domain.SnapshotPayload, error)
}

// DefaultPlanner implements Planner using a tree scanner
type DefaultPlanner struct {
	Scanner snapshot.Scanner
}

// NewDefaultPlanner creates a planner with the default scanner
func NewDefaultPlanner() *DefaultPlanner {
	return &DefaultPlanner{Scanner: snapshot.NewDefaultScanner()}
}

// Build implements the Planner interface.
//
// Classification is three-way: the fresh source snapshot, the fresh
// target snapshot, and the persisted history from the last sync.
// Exclusions apply only to the source walk; the target is always fully
// observed so drift can be detected anywhere.
func (p *DefaultPlanner) Build(ctx context.Context, pack domain.ModpackInfo, targetPath string, hist HistoryReader) (*domain.SyncPlan, domain.SnapshotPayload, error) {
	history := hist.Get(pack.Name)

	sourceSnap, err := p.Scanner.Snapshot(ctx, pack.Path, history.Exclusions)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshotting source %s: %w", pack.Path, err)
	}
	targetSnap, err := p.Scanner.Snapshot(ctx, targetPath, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("snapshotting target %s: %w", targetPath, err)
	}

	plan := &domain.SyncPlan{PackName: pack.Name}

	// Working copy; every path accounted for by the source pass is
	// removed, leaving only candidates for deletion.
	tracked := make(map[string]domain.FileRecord, len(history.Files))
	for rel, rec := range history.Files {
		tracked[rel] = rec
	}

	for _, rel := range sortedKeys(sourceSnap) {
		sourceEntry := sourceSnap[rel]

		change := domain.FileChange{
			RelativePath: rel,
			Action:       domain.ActionCopy,
			SourcePath:   sourceEntry.AbsolutePath,
			TargetPath:   filepath.Join(targetPath, filepath.FromSlash(rel)),
			Size:         sourceEntry.Size,
			Digest:       sourceEntry.Digest,
		}

		targetEntry, exists := targetSnap[rel]
		switch {
		case !exists:
			change.Reason = ReasonNewFile
			plan.Adds = append(plan.Adds, change)
		case targetEntry.Digest != sourceEntry.Digest:
			change.Action = domain.ActionUpdate
			change.Reason = ReasonContentDiffer
			plan.Updates = append(plan.Updates, change)
		default:
			change.Action = domain.ActionSkip
			plan.Skipped = append(plan.Skipped, change)
		}

		delete(tracked, rel)
	}

	// Whatever remains was synced before but has left the source tree
	for _, rel := range sortedRecordKeys(tracked) {
		record := tracked[rel]
		targetAbs := filepath.Join(targetPath, filepath.FromSlash(rel))
		targetEntry, exists := targetSnap[rel]

		// Drift beats deletion: deleting a file someone modified out
		// of band would be destructive and surprising.
		if record.Hash != "" && exists && targetEntry.Digest != record.Hash {
			plan.Updates = append(plan.Updates, domain.FileChange{
				RelativePath: rel,
				Action:       domain.ActionUpdate,
				TargetPath:   targetAbs,
				Reason:       ReasonTargetDrift,
			})
			continue
		}

		if exists {
			plan.Removals = append(plan.Removals, domain.FileChange{
				RelativePath: rel,
				Action:       domain.ActionDelete,
				TargetPath:   targetAbs,
				Reason:       ReasonRemoved,
			})
		}
		// Already absent from the target: nothing to do
	}

	payload := make(domain.SnapshotPayload, len(sourceSnap))
	for rel, entry := range sourceSnap {
		payload[rel] = domain.FileRecord{
			Hash:  entry.Digest,
			Size:  strconv.FormatInt(entry.Size, 10),
			Mtime: strconv.FormatFloat(float64(entry.ModTime.UnixMilli())/1000, 'f', -1, 64),
		}
	}

	return plan, payload, nil
}

func sortedKeys(m map[string]domain.SnapshotEntry) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedRecordKeys(m map[string]domain.FileRecord) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
