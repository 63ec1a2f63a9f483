package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/testutil"
)

func TestLoadFromString(t *testing.T) {
	yaml := `
instances_path: /games/minecraft/instances
target_path: /games/minecraft/live
auto_confirm_new_files: true
create_backups: true
log:
  level: debug
  format: json
`
	cfg, err := LoadFromString(yaml)
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	if cfg.InstancesPath != "/games/minecraft/instances" {
		t.Errorf("Unexpected instances path: %s", cfg.InstancesPath)
	}
	if cfg.TargetPath != "/games/minecraft/live" {
		t.Errorf("Unexpected target path: %s", cfg.TargetPath)
	}
	if !cfg.AutoConfirmNewFiles || cfg.AutoConfirmUpdates {
		t.Error("Auto-confirm flags not parsed correctly")
	}
	if !cfg.CreateBackups {
		t.Error("create_backups not parsed")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log config not parsed: %+v", cfg.Log)
	}
}

func TestLoadFromString_DefaultsApplied(t *testing.T) {
	cfg, err := LoadFromString("instances_path: /a\ntarget_path: /b\n")
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	if cfg.HistoryPath == "" || cfg.DataDir == "" || cfg.BackupDir == "" {
		t.Errorf("Expected path defaults, got %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Expected log defaults, got %+v", cfg.Log)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid",
			cfg:     Config{InstancesPath: "/a", TargetPath: "/b"},
			wantErr: false,
		},
		{
			name:    "missing instances path",
			cfg:     Config{TargetPath: "/b"},
			wantErr: true,
		},
		{
			name:    "missing target path",
			cfg:     Config{InstancesPath: "/a"},
			wantErr: true,
		},
		{
			name:    "same source and target",
			cfg:     Config{InstancesPath: "/a", TargetPath: "/a"},
			wantErr: true,
		},
		{
			name:    "bad log level",
			cfg:     Config{InstancesPath: "/a", TargetPath: "/b", Log: LogConfig{Level: "loud"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if tt.wantErr && !errors.Is(err, domain.ErrConfigInvalid) {
				t.Errorf("Expected ErrConfigInvalid, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.CreateTestFile(t, dir, "config.yaml", []byte(
		"instances_path: /packs\ntarget_path: /live\nauto_confirm_removals: true\n"))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.AutoConfirmRemovals {
		t.Error("auto_confirm_removals not parsed from file")
	}
}

func TestLoadFromString_Invalid(t *testing.T) {
	if _, err := LoadFromString(": not yaml : ["); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}
