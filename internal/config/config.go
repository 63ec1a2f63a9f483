package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voidworks/modsync/internal/domain"
)

// LogConfig controls logging output
type LogConfig struct {
	// Level is debug, info, warn, or error
	Level string `mapstructure:"level"`

	// Format is text or json
	Format string `mapstructure:"format"`

	// File enables a rotated log file at the given path
	File string `mapstructure:"file"`
}

// Config is the application configuration. The sync core consumes
// these as plain values; nothing below reaches into viper at runtime.
type Config struct {
	// InstancesPath is the root holding modpack directories
	InstancesPath string `mapstructure:"instances_path"`

	// TargetPath is the live installation kept in sync
	TargetPath string `mapstructure:"target_path"`

	// BackupDir receives timestamped pre-overwrite backups
	BackupDir string `mapstructure:"backup_dir"`

	// AutoConfirmNewFiles applies adds without prompting
	AutoConfirmNewFiles bool `mapstructure:"auto_confirm_new_files"`

	// AutoConfirmUpdates applies updates without prompting
	AutoConfirmUpdates bool `mapstructure:"auto_confirm_updates"`

	// AutoConfirmRemovals applies removals without prompting
	AutoConfirmRemovals bool `mapstructure:"auto_confirm_removals"`

	// CreateBackups backs up existing files before overwrite/delete
	CreateBackups bool `mapstructure:"create_backups"`

	// HistoryPath overrides the sync history document location
	HistoryPath string `mapstructure:"history_path"`

	// DataDir holds the run log database and lock files
	DataDir string `mapstructure:"data_dir"`

	Log LogConfig `mapstructure:"log"`
}

// DefaultAppDir returns the default directory for application data
func DefaultAppDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "modsync")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "modsync"
	}
	return filepath.Join(home, ".modsync")
}

// ApplyDefaults fills unset optional fields from the app directory
func (c *Config) ApplyDefaults() {
	appDir := DefaultAppDir()
	if c.HistoryPath == "" {
		c.HistoryPath = filepath.Join(appDir, "sync_history.json")
	}
	if c.DataDir == "" {
		c.DataDir = appDir
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(appDir, "backups")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.InstancesPath == "" {
		return fmt.Errorf("%w: instances_path cannot be empty", domain.ErrConfigInvalid)
	}
	if c.TargetPath == "" {
		return fmt.Errorf("%w: target_path cannot be empty", domain.ErrConfigInvalid)
	}
	if c.InstancesPath == c.TargetPath {
		return fmt.Errorf("%w: instances_path and target_path cannot be the same", domain.ErrConfigInvalid)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrConfigInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", domain.ErrConfigInvalid, c.Log.Format)
	}
	return nil
}
