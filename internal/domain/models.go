package domain

import "time"

// FileAction represents the kind of operation planned for a file
type FileAction string

const (
	ActionCopy   FileAction = "copy"
	ActionUpdate FileAction = "update"
	ActionDelete FileAction = "delete"
	ActionSkip   FileAction = "skip"
)

// IsValid checks if the action is a known value
func (a FileAction) IsValid() bool {
	switch a {
	case ActionCopy, ActionUpdate, ActionDelete, ActionSkip:
		return true
	}
	return false
}

// SnapshotEntry describes one file observed during a tree walk.
// Entries are rebuilt on every scan and never persisted directly;
// a trimmed FileRecord projection goes into history instead.
type SnapshotEntry struct {
	// RelativePath is slash-normalized and case-preserving
	RelativePath string

	// AbsolutePath is the file's location on disk
	AbsolutePath string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time

	// Digest is the hex-encoded content hash; empty means
	// "unknown content" (the file could not be read)
	Digest string
}

// FileChange represents a single planned or executed action
type FileChange struct {
	// RelativePath identifies the file within both trees
	RelativePath string

	// Action to perform
	Action FileAction

	// SourcePath is the absolute source location (empty for deletions
	// and drift-only updates)
	SourcePath string

	// TargetPath is the absolute destination location
	TargetPath string

	// Size in bytes of the source file, when known
	Size int64

	// Digest of the source content, when known
	Digest string

	// Reason explains why this change was planned
	Reason string
}

// SyncPlan holds the classified changes for one source/target pair.
// A relative path appears in at most one of Adds/Updates/Removals at
// build time; execution may move declined items into Skipped.
type SyncPlan struct {
	PackName string

	Adds     []FileChange
	Updates  []FileChange
	Removals []FileChange
	Skipped  []FileChange
}

// IsEmpty reports whether the plan has no pending work.
// Skipped entries alone do not count as pending work.
func (p *SyncPlan) IsEmpty() bool {
	return len(p.Adds) == 0 && len(p.Updates) == 0 && len(p.Removals) == 0
}

// AllChanges returns every change in the plan, pending and skipped
func (p *SyncPlan) AllChanges() []FileChange {
	out := make([]FileChange, 0, len(p.Adds)+len(p.Updates)+len(p.Removals)+len(p.Skipped))
	out = append(out, p.Adds...)
	out = append(out, p.Updates...)
	out = append(out, p.Removals...)
	out = append(out, p.Skipped...)
	return out
}

// PendingCount returns the number of work units the plan carries
func (p *SyncPlan) PendingCount() int {
	return len(p.Adds) + len(p.Updates) + len(p.Removals)
}

// FileRecord is the fixed per-path record persisted in history.
// Size and Mtime are kept as strings to stay backward-readable with
// older history documents.
type FileRecord struct {
	Hash  string `json:"hash"`
	Size  string `json:"size"`
	Mtime string `json:"mtime"`
}

// SnapshotPayload maps relative path to the record persisted on a
// successful sync. Built during planning, written after execution.
type SnapshotPayload map[string]FileRecord

// SyncHistory is the persistent per-modpack sync state
type SyncHistory struct {
	// PackName identifies the source tree this history belongs to
	PackName string `json:"-"`

	// Files maps relative path to the record from the last sync
	Files map[string]FileRecord `json:"files"`

	// Exclusions are slash-normalized relative paths suppressed from
	// source snapshots
	Exclusions []string `json:"exclusions"`

	// LastSynced is a unix timestamp in seconds; nil if never synced
	LastSynced *float64 `json:"last_synced"`
}

// IsExcluded checks whether a normalized relative path is excluded
func (h *SyncHistory) IsExcluded(relPath string) bool {
	for _, e := range h.Exclusions {
		if e == relPath {
			return true
		}
	}
	return false
}

// ModpackInfo is the discovery result for one candidate modpack.
// Recomputed on every discovery call; never persisted.
type ModpackInfo struct {
	// Name is the directory name, used as the history key
	Name string

	// Path is the absolute path to the modpack root
	Path string

	// IconPath points at icon.png/pack.png when present
	IconPath string

	// ManifestPath points at manifest.json when present
	ManifestPath string
}
