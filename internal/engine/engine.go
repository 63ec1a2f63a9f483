package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/voidworks/modsync/internal/config"
	"github.com/voidworks/modsync/internal/core/executor"
	"github.com/voidworks/modsync/internal/core/planner"
	"github.com/voidworks/modsync/internal/discover"
	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/history"
	"github.com/voidworks/modsync/internal/lock"
	"github.com/voidworks/modsync/internal/logger"
	"github.com/voidworks/modsync/internal/progress"
	"github.com/voidworks/modsync/internal/state"
)

// Engine owns the wiring for discovery, planning, and execution.
// It is constructed once per run from explicit configuration; there is
// no process-wide instance.
type Engine struct {
	cfg      *config.Config
	history  *history.Store
	runs     *state.Manager
	locks    *lock.PackLock
	planner  planner.Planner
	executor *executor.Executor
	log      logger.Logger
}

// Hooks let the caller observe and steer one sync run
type Hooks struct {
	// OnPlan is called with the finished plan before execution.
	// Returning false aborts the run without touching the target.
	OnPlan func(*domain.SyncPlan) bool

	// ConfirmUpdate answers per-file update prompts (ignored when
	// auto-confirm-updates is on)
	ConfirmUpdate executor.ConfirmFunc

	// ConfirmRemoval answers per-file removal prompts (ignored when
	// auto-confirm-removals is on)
	ConfirmRemoval executor.ConfirmFunc

	// Reporter receives per-item progress
	Reporter progress.Reporter
}

// New builds an engine from configuration. The run log is optional
// infrastructure: if its database cannot be opened the engine still
// works, it just stops recording runs.
func New(cfg *config.Config, log logger.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = logger.Get()
	}

	store, err := history.NewStore(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	locks, err := lock.New(filepath.Join(cfg.DataDir, "locks"))
	if err != nil {
		return nil, fmt.Errorf("failed to create lock manager: %w", err)
	}

	runs, err := state.NewManager(cfg.DataDir)
	if err != nil {
		log.Warn("run log unavailable", "error", err)
		runs = nil
	}

	return &Engine{
		cfg:      cfg,
		history:  store,
		runs:     runs,
		locks:    locks,
		planner:  planner.NewDefaultPlanner(),
		executor: executor.New(log),
		log:      log,
	}, nil
}

// Close releases resources held by the engine
func (e *Engine) Close() error {
	if e.runs != nil {
		return e.runs.Close()
	}
	return nil
}

// Discover lists candidate modpacks under the configured instances root
func (e *Engine) Discover() ([]domain.ModpackInfo, error) {
	return discover.Modpacks(e.cfg.InstancesPath)
}

// FindPack resolves a modpack by name
func (e *Engine) FindPack(name string) (domain.ModpackInfo, error) {
	packs, err := e.Discover()
	if err != nil {
		return domain.ModpackInfo{}, err
	}
	for _, p := range packs {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.ModpackInfo{}, fmt.Errorf("modpack %q not found under %s", name, e.cfg.InstancesPath)
}

// Plan builds a preview plan without taking the pack lock or touching
// the target. The returned payload must be passed back unchanged if the
// plan is executed.
func (e *Engine) Plan(ctx context.Context, pack domain.ModpackInfo) (*domain.SyncPlan, domain.SnapshotPayload, error) {
	return e.planner.Build(ctx, pack, e.cfg.TargetPath, e.history)
}

// Sync plans and executes in one critical section. The per-pack lock is
// held for the whole build-and-execute cycle so concurrent syncs of the
// same pack cannot race on the history store.
func (e *Engine) Sync(ctx context.Context, pack domain.ModpackInfo, hooks Hooks) (*executor.Result, error) {
	if err := e.locks.Acquire(pack.Name); err != nil {
		return nil, err
	}
	defer func() {
		if err := e.locks.Release(pack.Name); err != nil {
			e.log.Warn("failed to release pack lock", "pack", pack.Name, "error", err)
		}
	}()

	start := time.Now()

	plan, payload, err := e.planner.Build(ctx, pack, e.cfg.TargetPath, e.history)
	if err != nil {
		e.recordRun(pack.Name, start, nil, err)
		return nil, err
	}

	if hooks.OnPlan != nil && !hooks.OnPlan(plan) {
		e.log.Info("sync aborted by caller", "pack", pack.Name)
		return &executor.Result{}, nil
	}

	opts := executor.Options{
		AutoConfirmUpdates:  e.cfg.AutoConfirmUpdates,
		AutoConfirmRemovals: e.cfg.AutoConfirmRemovals,
		CreateBackups:       e.cfg.CreateBackups,
		BackupRoot:          e.cfg.BackupDir,
	}

	result, err := e.executor.Execute(ctx, plan, e.cfg.TargetPath, payload, e.history,
		opts, hooks.ConfirmUpdate, hooks.ConfirmRemoval, hooks.Reporter)

	e.recordRun(pack.Name, start, result, err)
	return result, err
}

// UpdatePaths swaps the instances and/or target roots, keeping the old
// value for any empty argument. The change is rejected if the resulting
// configuration would not validate.
func (e *Engine) UpdatePaths(instancesPath, targetPath string) error {
	next := *e.cfg
	if instancesPath != "" {
		next.InstancesPath = instancesPath
	}
	if targetPath != "" {
		next.TargetPath = targetPath
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*e.cfg = next
	return nil
}

// AddExclusion permanently omits a relative path from future source
// snapshots of the named pack
func (e *Engine) AddExclusion(packName, relPath string) error {
	return e.history.AddExclusion(packName, relPath)
}

// RemoveExclusion undoes AddExclusion
func (e *Engine) RemoveExclusion(packName, relPath string) error {
	return e.history.RemoveExclusion(packName, relPath)
}

// History returns the persisted sync history for a pack
func (e *Engine) History(packName string) *domain.SyncHistory {
	return e.history.Get(packName)
}

// Runs returns recent executed runs for a pack, newest first.
// Returns nil when the run log is unavailable.
func (e *Engine) Runs(packName string, limit int) ([]state.RunRecord, error) {
	if e.runs == nil {
		return nil, nil
	}
	return e.runs.History(packName, limit)
}

// AllRuns returns recent executed runs across every pack, newest first
func (e *Engine) AllRuns(limit int) ([]state.RunRecord, error) {
	if e.runs == nil {
		return nil, nil
	}
	return e.runs.AllHistory(limit)
}

// LastSuccess returns the most recent successful run for a pack, or
// nil if there has never been one
func (e *Engine) LastSuccess(packName string) (*state.RunRecord, error) {
	if e.runs == nil {
		return nil, nil
	}
	return e.runs.LastSuccess(packName)
}

// recordRun writes the audit record; failures only log
func (e *Engine) recordRun(packName string, start time.Time, result *executor.Result, runErr error) {
	if e.runs == nil {
		return
	}

	record := state.RunRecord{
		PackName:  packName,
		StartTime: start,
		EndTime:   time.Now(),
		Status:    state.StatusSuccess,
	}
	if result != nil {
		record.FilesCopied = result.Copied
		record.FilesUpdated = result.Updated
		record.FilesRemoved = result.Removed
		record.FilesSkipped = result.Skipped
		record.FilesFailed = result.Failed
		if result.Failed > 0 {
			record.Status = state.StatusPartial
		}
	}
	if runErr != nil {
		record.Status = state.StatusFailed
		record.Error = runErr.Error()
	}

	if err := e.runs.SaveRun(record); err != nil {
		e.log.Warn("failed to record sync run", "pack", packName, "error", err)
	}
}
