package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/fsutil"
)

// Store persists per-modpack sync history. The on-disk representation
// is a single JSON document mapping modpack name to its history, so
// every save is a read-modify-write of the whole table. All operations
// are serialized on an internal mutex.
type Store struct {
	path  string
	mu    sync.Mutex
	cache map[string]*domain.SyncHistory
	now   func() time.Time
}

// NewStore creates a store backed by the given file path. The parent
// directory is created eagerly so first save cannot fail on it.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Store{
		path: path,
		now:  time.Now,
	}, nil
}

// rawHistory mirrors the persisted shape of one record. Unknown fields
// in older documents are ignored on load.
type rawHistory struct {
	Files      map[string]domain.FileRecord `json:"files"`
	Exclusions []string                     `json:"exclusions"`
	LastSynced *float64                     `json:"last_synced"`
}

// readRaw loads the whole table from disk. Malformed or unreadable
// state degrades to an empty table: history is an audit trail, not a
// correctness-critical ledger, and the worst case is a fuller resync.
func (s *Store) readRaw() map[string]rawHistory {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return map[string]rawHistory{}
	}
	var raw map[string]rawHistory
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]rawHistory{}
	}
	if raw == nil {
		raw = map[string]rawHistory{}
	}
	return raw
}

func (s *Store) writeRaw(raw map[string]rawHistory) error {
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// loadAllLocked fills the cache from disk on first use.
// Caller must hold s.mu.
func (s *Store) loadAllLocked() map[string]*domain.SyncHistory {
	if s.cache != nil {
		return s.cache
	}
	s.cache = make(map[string]*domain.SyncHistory)
	for name, payload := range s.readRaw() {
		files := payload.Files
		if files == nil {
			files = map[string]domain.FileRecord{}
		}
		s.cache[name] = &domain.SyncHistory{
			PackName:   name,
			Files:      files,
			Exclusions: payload.Exclusions,
			LastSynced: payload.LastSynced,
		}
	}
	return s.cache
}

// Get returns the history for the given modpack name, creating a fresh
// empty one (not yet persisted) if absent. The returned value is a copy;
// mutations take effect only through Save/UpdateSnapshot/exclusion calls.
func (s *Store) Get(name string) *domain.SyncHistory {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories := s.loadAllLocked()
	h, ok := histories[name]
	if !ok {
		h = &domain.SyncHistory{
			PackName: name,
			Files:    map[string]domain.FileRecord{},
		}
		histories[name] = h
	}
	return copyHistory(h)
}

// Save writes the given history back into the table and persists the
// whole document. Concurrent savers must re-fetch afterwards to avoid
// lost updates.
func (s *Store) Save(h *domain.SyncHistory) error {
	if h == nil || h.PackName == "" {
		return fmt.Errorf("history must carry a modpack name")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(h)
}

func (s *Store) saveLocked(h *domain.SyncHistory) error {
	raw := s.readRaw()
	raw[h.PackName] = rawHistory{
		Files:      h.Files,
		Exclusions: h.Exclusions,
		LastSynced: h.LastSynced,
	}
	if err := s.writeRaw(raw); err != nil {
		return err
	}

	histories := s.loadAllLocked()
	histories[h.PackName] = copyHistory(h)
	return nil
}

// UpdateSnapshot replaces the file table for name with the given
// payload and refreshes the last-synced timestamp.
func (s *Store) UpdateSnapshot(name string, payload domain.SnapshotPayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(name)
	files := make(map[string]domain.FileRecord, len(payload))
	for rel, rec := range payload {
		files[rel] = rec
	}
	h.Files = files

	ts := float64(s.now().UnixMilli()) / 1000
	h.LastSynced = &ts

	return s.saveLocked(h)
}

// AddExclusion records a relative path as excluded for name.
// Idempotent; saves only when the set actually changed.
func (s *Store) AddExclusion(name, relPath string) error {
	relPath = fsutil.NormalizeRelative(relPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(name)
	if h.IsExcluded(relPath) {
		return nil
	}
	h.Exclusions = append(h.Exclusions, relPath)
	return s.saveLocked(h)
}

// RemoveExclusion drops a relative path from the exclusion set.
// Idempotent; saves only when the set actually changed.
func (s *Store) RemoveExclusion(name, relPath string) error {
	relPath = fsutil.NormalizeRelative(relPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	h := s.getLocked(name)
	for i, e := range h.Exclusions {
		if e == relPath {
			h.Exclusions = append(h.Exclusions[:i], h.Exclusions[i+1:]...)
			return s.saveLocked(h)
		}
	}
	return nil
}

// getLocked returns the cached history for name, creating it if absent.
// Caller must hold s.mu.
func (s *Store) getLocked(name string) *domain.SyncHistory {
	histories := s.loadAllLocked()
	h, ok := histories[name]
	if !ok {
		h = &domain.SyncHistory{
			PackName: name,
			Files:    map[string]domain.FileRecord{},
		}
		histories[name] = h
	}
	return h
}

func copyHistory(h *domain.SyncHistory) *domain.SyncHistory {
	out := &domain.SyncHistory{
		PackName: h.PackName,
		Files:    make(map[string]domain.FileRecord, len(h.Files)),
	}
	for rel, rec := range h.Files {
		out.Files[rel] = rec
	}
	if h.Exclusions != nil {
		out.Exclusions = append([]string(nil), h.Exclusions...)
	}
	if h.LastSynced != nil {
		ts := *h.LastSynced
		out.LastSynced = &ts
	}
	return out
}
