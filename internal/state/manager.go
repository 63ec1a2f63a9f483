package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Run statuses
const (
	StatusSuccess = "success"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// RunRecord represents a single executed sync run for a modpack
type RunRecord struct {
	ID           int64
	PackName     string
	StartTime    time.Time
	EndTime      time.Time
	Status       string // success, partial, failed
	FilesCopied  int
	FilesUpdated int
	FilesRemoved int
	FilesSkipped int
	FilesFailed  int
	Error        string
}

// Manager persists the sync run audit log in a local sqlite database.
// The plan/execute pipeline works without it; the log exists so users
// can answer "what did the last sync actually do".
type Manager struct {
	db *sql.DB
}

// NewManager opens (or creates) the run log under dataDir
func NewManager(dataDir string) (*Manager, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory cannot be empty")
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "modsync.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single connection prevents "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		pack_name TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		files_copied INTEGER DEFAULT 0,
		files_updated INTEGER DEFAULT 0,
		files_removed INTEGER DEFAULT 0,
		files_skipped INTEGER DEFAULT 0,
		files_failed INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_pack_time ON sync_runs(pack_name, start_time DESC);
	CREATE INDEX IF NOT EXISTS idx_sync_runs_status ON sync_runs(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveRun records an executed sync run
func (m *Manager) SaveRun(record RunRecord) error {
	if record.Status != StatusSuccess && record.Status != StatusPartial && record.Status != StatusFailed {
		return fmt.Errorf("invalid status: %s (must be %q, %q, or %q)",
			record.Status, StatusSuccess, StatusPartial, StatusFailed)
	}

	query := `
		INSERT INTO sync_runs
			(pack_name, start_time, end_time, status, files_copied, files_updated, files_removed, files_skipped, files_failed, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.PackName,
		record.StartTime,
		record.EndTime,
		record.Status,
		record.FilesCopied,
		record.FilesUpdated,
		record.FilesRemoved,
		record.FilesSkipped,
		record.FilesFailed,
		record.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save run record: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT id, pack_name, start_time, end_time, status,
	       files_copied, files_updated, files_removed, files_skipped, files_failed, error
	FROM sync_runs
`

// History retrieves the most recent runs for a modpack
func (m *Manager) History(packName string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectColumns+`WHERE pack_name = ? ORDER BY start_time DESC LIMIT ?`, packName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// AllHistory retrieves the most recent runs across all modpacks
func (m *Manager) AllHistory(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := m.db.Query(selectColumns+`ORDER BY start_time DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query all history: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// LastSuccess retrieves the most recent successful run for a modpack,
// or nil if there has never been one
func (m *Manager) LastSuccess(packName string) (*RunRecord, error) {
	row := m.db.QueryRow(selectColumns+`WHERE pack_name = ? AND status = ? ORDER BY start_time DESC LIMIT 1`,
		packName, StatusSuccess)

	var record RunRecord
	err := row.Scan(
		&record.ID,
		&record.PackName,
		&record.StartTime,
		&record.EndTime,
		&record.Status,
		&record.FilesCopied,
		&record.FilesUpdated,
		&record.FilesRemoved,
		&record.FilesSkipped,
		&record.FilesFailed,
		&record.Error,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

func scanRuns(rows *sql.Rows) ([]RunRecord, error) {
	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		err := rows.Scan(
			&record.ID,
			&record.PackName,
			&record.StartTime,
			&record.EndTime,
			&record.Status,
			&record.FilesCopied,
			&record.FilesUpdated,
			&record.FilesRemoved,
			&record.FilesSkipped,
			&record.FilesFailed,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
