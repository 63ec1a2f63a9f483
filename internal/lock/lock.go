package lock

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voidworks/modsync/internal/domain"
)

// DefaultStaleTimeout is the fallback after which a lock from another
// host is considered abandoned
const DefaultStaleTimeout = 30 * time.Minute

// Info describes the holder of a pack lock
type Info struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartTime time.Time `json:"start_time"`
	PackName  string    `json:"pack_name"`
}

// PackLock provides per-modpack mutual exclusion. Plan building and
// execution against one pack name race on the history store's
// read-modify-write, so only one may run at a time. Each pack gets its
// own lock file, so different packs still sync concurrently.
type PackLock struct {
	dir          string
	staleTimeout time.Duration
	held         map[string]*Info
}

// New creates a lock manager storing lock files under dir
func New(dir string) (*PackLock, error) {
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get config dir: %w", err)
		}
		dir = filepath.Join(configDir, "modsync", "locks")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	return &PackLock{
		dir:          dir,
		staleTimeout: DefaultStaleTimeout,
		held:         make(map[string]*Info),
	}, nil
}

// SetStaleTimeout overrides the cross-host staleness fallback
func (l *PackLock) SetStaleTimeout(d time.Duration) {
	l.staleTimeout = d
}

func (l *PackLock) pathFor(packName string) string {
	// Pack names are directory names; flatten anything hostile
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, packName)
	return filepath.Join(l.dir, safe+".lock")
}

// Acquire takes the lock for packName. Returns ErrSyncInProgress
// (wrapped with holder detail) if another live process holds it.
func (l *PackLock) Acquire(packName string) error {
	path := l.pathFor(packName)

	if existing, err := readInfo(path); err == nil {
		if l.isStale(existing) {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove stale lock: %w", err)
			}
		} else {
			return fmt.Errorf("%w: %s held by pid %d on %s",
				domain.ErrSyncInProgress, packName, existing.PID, existing.Hostname)
		}
	}

	hostname, _ := os.Hostname()
	info := &Info{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartTime: time.Now(),
		PackName:  packName,
	}

	// O_EXCL makes creation the atomic acquisition point
	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrSyncInProgress, packName)
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(info); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	l.held[packName] = info
	return nil
}

// Release drops the lock for packName if this instance holds it
func (l *PackLock) Release(packName string) error {
	info, ok := l.held[packName]
	if !ok {
		return nil
	}
	delete(l.held, packName)

	path := l.pathFor(packName)
	existing, err := readInfo(path)
	if err != nil {
		return nil // already gone
	}
	if existing.PID != info.PID || existing.Hostname != info.Hostname || !existing.StartTime.Equal(info.StartTime) {
		return fmt.Errorf("lock for %s was taken over by another process", packName)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// IsLocked reports whether a live lock exists for packName
func (l *PackLock) IsLocked(packName string) bool {
	info, err := readInfo(l.pathFor(packName))
	if err != nil {
		return false
	}
	return !l.isStale(info)
}

// Holder returns information about the current holder of packName's lock
func (l *PackLock) Holder(packName string) (*Info, error) {
	info, err := readInfo(l.pathFor(packName))
	if err != nil {
		return nil, err
	}
	if l.isStale(info) {
		return nil, fmt.Errorf("lock is stale")
	}
	return info, nil
}

// ForceRelease removes packName's lock file unconditionally
func (l *PackLock) ForceRelease(packName string) error {
	delete(l.held, packName)
	if err := os.Remove(l.pathFor(packName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to force remove lock: %w", err)
	}
	return nil
}

func readInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid lock file format: %w", err)
	}
	return &info, nil
}

// isStale considers a same-host lock stale only when its process is
// dead; foreign-host locks fall back to the timeout.
func (l *PackLock) isStale(info *Info) bool {
	hostname, _ := os.Hostname()
	if info.Hostname == hostname {
		return !processExists(info.PID)
	}
	return time.Since(info.StartTime) > l.staleTimeout
}
