package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// NormalizeRelative normalizes a relative path to forward-slash form.
// Exclusion matching and history keys use this form on every platform.
func NormalizeRelative(relPath string) string {
	return strings.ReplaceAll(relPath, "\\", "/")
}

// CopyFile copies source to destination, creating parent directories
// as needed. The copy goes through a temp file in the destination
// directory followed by a rename, so readers never observe a partial
// file. Modification time is preserved where the platform allows.
func CopyFile(source, destination string) error {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	tempPath := destination + ".modsync.tmp"
	dst, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	_, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()

	if copyErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("copy data: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Rename(tempPath, destination); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	// Best effort; a failed Chtimes does not invalidate the copy
	_ = os.Chtimes(destination, time.Now(), srcInfo.ModTime())

	return nil
}

// RemoveFile removes the given file. A missing file is not an error.
func RemoveFile(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// BackupTimestamp formats a time into the coarse, human-sortable
// backup directory name.
func BackupTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// CreateBackup copies source into backupRoot under a subdirectory
// named for the current timestamp, keeping the file's base name.
// Returns the backup path, or an error the caller may treat as
// "no backup available".
func CreateBackup(source, backupRoot string) (string, error) {
	if backupRoot == "" {
		return "", fmt.Errorf("no backup root configured")
	}

	backupDir := filepath.Join(backupRoot, BackupTimestamp(time.Now()))
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	target := filepath.Join(backupDir, filepath.Base(source))
	if err := CopyFile(source, target); err != nil {
		return "", err
	}
	return target, nil
}

// PruneEmptyDirs removes directories under basePath left empty, walking
// bottom-up. basePath itself is never removed. Directories that cannot
// be removed (not empty, permission error) are left in place.
func PruneEmptyDirs(basePath string) {
	if _, err := os.Stat(basePath); err != nil {
		return
	}

	var dirs []string
	_ = filepath.WalkDir(basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != basePath {
			dirs = append(dirs, path)
		}
		return nil
	})

	// Deepest first so nested empty chains collapse in one pass
	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(os.PathSeparator)) > strings.Count(dirs[j], string(os.PathSeparator))
	})

	for _, dir := range dirs {
		// Remove fails on non-empty directories, which is the guard we want
		_ = os.Remove(dir)
	}
}
