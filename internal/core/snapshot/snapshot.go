package snapshot

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/voidworks/modsync/internal/core/checksum"
	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/fsutil"
)

// Scanner walks directory trees and captures per-file metadata
type Scanner interface {
	// Snapshot collects an entry for every regular file under basePath,
	// keyed by slash-normalized relative path. Paths whose normalized
	// form is in exclusions are skipped. A missing basePath yields an
	// empty map, not an error.
	Snapshot(ctx context.Context, basePath string, exclusions []string) (map[string]domain.SnapshotEntry, error)
}

// DefaultScanner implements Scanner using a checksum calculator
type DefaultScanner struct {
	calc checksum.Calculator
}

// NewScanner creates a scanner using the given calculator
func NewScanner(calc checksum.Calculator) *DefaultScanner {
	return &DefaultScanner{calc: calc}
}

// NewDefaultScanner creates a scanner with the default calculator
func NewDefaultScanner() *DefaultScanner {
	return NewScanner(checksum.NewDefaultCalculator())
}

// Snapshot implements the Scanner interface
func (s *DefaultScanner) Snapshot(ctx context.Context, basePath string, exclusions []string) (map[string]domain.SnapshotEntry, error) {
	result := make(map[string]domain.SnapshotEntry)

	if _, err := os.Stat(basePath); err != nil {
		// Absence of a tree is a valid state, not a fault
		return result, nil
	}

	excluded := make(map[string]bool, len(exclusions))
	for _, e := range exclusions {
		excluded[fsutil.NormalizeRelative(e)] = true
	}

	err := filepath.WalkDir(basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			return nil
		}

		relPath, relErr := filepath.Rel(basePath, path)
		if relErr != nil {
			return nil
		}
		normRel := fsutil.NormalizeRelative(relPath)

		if excluded[normRel] {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}

		result[normRel] = domain.SnapshotEntry{
			RelativePath: normRel,
			AbsolutePath: path,
			Size:         info.Size(),
			ModTime:      info.ModTime(),
			Digest:       s.calc.HashFile(ctx, path),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
