package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/fsutil"
	"github.com/voidworks/modsync/internal/logger"
	"github.com/voidworks/modsync/internal/progress"
)

// ConfirmFunc answers whether a single change may proceed. It is a
// synchronous rendezvous: execution blocks until an answer arrives.
type ConfirmFunc func(change domain.FileChange) bool

// HistoryWriter is the slice of the history store the executor needs
type HistoryWriter interface {
	UpdateSnapshot(name string, payload domain.SnapshotPayload) error
}

// Options controls confirmation gating and backups for one run
type Options struct {
	// AutoConfirmUpdates applies updates without asking
	AutoConfirmUpdates bool

	// AutoConfirmRemovals applies removals without asking
	AutoConfirmRemovals bool

	// CreateBackups copies existing destinations into BackupRoot
	// before any overwrite or delete
	CreateBackups bool

	// BackupRoot is the directory for timestamped backups
	BackupRoot string
}

// Result summarizes what actually happened during a run
type Result struct {
	Copied  int
	Updated int
	Removed int
	Skipped int
	Failed  int
}

// Executor applies sync plans against a target tree
type Executor struct {
	log logger.Logger
}

// New creates an executor logging through the given logger
func New(log logger.Logger) *Executor {
	if log == nil {
		log = &logger.NullLogger{}
	}
	return &Executor{log: log}
}

// Execute applies the plan against targetPath. Per-file I/O failures
// are logged and counted but do not abort the run; the returned error
// covers only fatal conditions (missing target root, cancellation,
// failure to persist history).
//
// On completion the snapshot payload is persisted under the plan's
// pack name regardless of how many items were declined, and empty
// directories left behind by deletions are pruned.
func (e *Executor) Execute(
	ctx context.Context,
	plan *domain.SyncPlan,
	targetPath string,
	payload domain.SnapshotPayload,
	hist HistoryWriter,
	opts Options,
	confirmUpdate ConfirmFunc,
	confirmRemoval ConfirmFunc,
	reporter progress.Reporter,
) (*Result, error) {
	if info, err := os.Stat(targetPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", domain.ErrTargetMissing, targetPath)
	}
	if reporter == nil {
		reporter = progress.NullReporter{}
	}

	// Work units are counted before any add can be reclassified, so a
	// deferred add still ticks exactly once (in the update pass).
	reporter.SetTotal(plan.PendingCount())

	result := &Result{}

	if err := e.applyAdds(ctx, plan, targetPath, reporter, result); err != nil {
		return result, err
	}
	if err := e.applyUpdates(ctx, plan, targetPath, opts, confirmUpdate, reporter, result); err != nil {
		return result, err
	}
	if err := e.applyRemovals(ctx, plan, opts, confirmRemoval, reporter, result); err != nil {
		return result, err
	}

	if err := hist.UpdateSnapshot(plan.PackName, payload); err != nil {
		return result, fmt.Errorf("persisting snapshot for %s: %w", plan.PackName, err)
	}

	fsutil.PruneEmptyDirs(targetPath)

	return result, nil
}

func (e *Executor) applyAdds(ctx context.Context, plan *domain.SyncPlan, targetPath string, reporter progress.Reporter, result *Result) error {
	for _, change := range plan.Adds {
		if err := ctx.Err(); err != nil {
			return err
		}

		destination := destinationFor(change, targetPath)

		if _, err := os.Stat(destination); err == nil {
			// Raced with an external writer since planning. Reclassify
			// and defer to the update pass, which runs after this one,
			// so the item is still handled in the same run.
			change.Action = domain.ActionUpdate
			change.Reason = "destination already exists"
			plan.Updates = append(plan.Updates, change)
			e.log.Info("destination appeared since planning, deferring to update pass", "path", change.RelativePath)
			continue
		}

		if change.SourcePath == "" || !exists(change.SourcePath) {
			e.log.Warn("source missing, skipping", "path", change.RelativePath)
			result.Failed++
			reporter.Tick(fmt.Sprintf("Skipped %s (source missing)", change.RelativePath))
			continue
		}

		if err := fsutil.CopyFile(change.SourcePath, destination); err != nil {
			e.log.Error("copy failed", "path", change.RelativePath, "error", err)
			result.Failed++
			reporter.Tick(fmt.Sprintf("Failed %s", change.RelativePath))
			continue
		}

		e.log.Info("copied", "path", change.RelativePath)
		result.Copied++
		reporter.Tick(fmt.Sprintf("Copied %s", change.RelativePath))
	}
	return nil
}

func (e *Executor) applyUpdates(ctx context.Context, plan *domain.SyncPlan, targetPath string, opts Options, confirm ConfirmFunc, reporter progress.Reporter, result *Result) error {
	// Snapshot the slice: it may hold adds deferred by applyAdds, and
	// declined items are appended to Skipped while we iterate.
	updates := append([]domain.FileChange(nil), plan.Updates...)

	for _, change := range updates {
		if err := ctx.Err(); err != nil {
			return err
		}

		destination := destinationFor(change, targetPath)

		if !opts.AutoConfirmUpdates {
			if confirm == nil || !confirm(change) {
				plan.Skipped = append(plan.Skipped, change)
				e.log.Info("update declined", "path", change.RelativePath)
				result.Skipped++
				reporter.Tick(fmt.Sprintf("Skipped %s", change.RelativePath))
				continue
			}
		}

		if change.SourcePath != "" && exists(change.SourcePath) {
			if opts.CreateBackups && exists(destination) {
				if _, err := fsutil.CreateBackup(destination, opts.BackupRoot); err != nil {
					// No backup available; the overwrite still proceeds
					e.log.Warn("backup failed", "path", change.RelativePath, "error", err)
				}
			}
			if err := fsutil.CopyFile(change.SourcePath, destination); err != nil {
				e.log.Error("update failed", "path", change.RelativePath, "error", err)
				result.Failed++
				reporter.Tick(fmt.Sprintf("Failed %s", change.RelativePath))
				continue
			}
			e.log.Info("updated", "path", change.RelativePath)
			result.Updated++
		} else {
			// Drift-only update: the file left the source tree but the
			// target copy changed since last sync. Report, touch nothing.
			e.log.Warn("target changed externally", "path", change.RelativePath)
		}
		reporter.Tick(fmt.Sprintf("Updated %s", change.RelativePath))
	}
	return nil
}

func (e *Executor) applyRemovals(ctx context.Context, plan *domain.SyncPlan, opts Options, confirm ConfirmFunc, reporter progress.Reporter, result *Result) error {
	for _, change := range plan.Removals {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !exists(change.TargetPath) {
			// Already gone
			continue
		}

		if !opts.AutoConfirmRemovals {
			if confirm == nil || !confirm(change) {
				plan.Skipped = append(plan.Skipped, change)
				e.log.Info("removal declined", "path", change.RelativePath)
				result.Skipped++
				reporter.Tick(fmt.Sprintf("Kept %s", change.RelativePath))
				continue
			}
		}

		if opts.CreateBackups {
			if _, err := fsutil.CreateBackup(change.TargetPath, opts.BackupRoot); err != nil {
				e.log.Warn("backup failed", "path", change.RelativePath, "error", err)
			}
		}

		if err := fsutil.RemoveFile(change.TargetPath); err != nil {
			e.log.Error("remove failed", "path", change.RelativePath, "error", err)
			result.Failed++
			reporter.Tick(fmt.Sprintf("Failed %s", change.RelativePath))
			continue
		}

		e.log.Info("removed", "path", change.RelativePath)
		result.Removed++
		reporter.Tick(fmt.Sprintf("Removed %s", change.RelativePath))
	}
	return nil
}

func destinationFor(change domain.FileChange, targetPath string) string {
	if change.TargetPath != "" {
		return change.TargetPath
	}
	return filepath.Join(targetPath, filepath.FromSlash(change.RelativePath))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
