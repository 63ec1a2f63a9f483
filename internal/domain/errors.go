package domain

import "errors"

// Fatal errors - abort the current operation
var (
	// ErrTargetMissing indicates the target root does not exist.
	// This signals a misconfigured target, not a transient condition.
	ErrTargetMissing = errors.New("target path does not exist")

	// ErrSyncInProgress indicates another sync holds the per-pack lock
	ErrSyncInProgress = errors.New("sync already in progress")

	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

// Recoverable conditions - logged, the run continues
var (
	// ErrSourceVanished indicates a planned source file disappeared
	// between planning and execution
	ErrSourceVanished = errors.New("source file no longer exists")

	// ErrBackupFailed indicates a pre-overwrite backup could not be
	// written; the primary operation still proceeds
	ErrBackupFailed = errors.New("backup failed")
)
