package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voidworks/modsync/internal/config"
	"github.com/voidworks/modsync/internal/domain"
	"github.com/voidworks/modsync/internal/engine"
	"github.com/voidworks/modsync/internal/logger"
)

var (
	cfgFile       string
	instancesPath string
	targetPath    string
	logLevel      string
	logFormat     string

	rootCmd = &cobra.Command{
		Use:   "modsync",
		Short: "Keep a game installation in sync with a modpack directory",
		Long: `modsync mirrors a selected modpack directory into a live game
installation. It hashes both trees, compares them against the last
synced state, and applies only what changed, asking before it
overwrites or deletes anything it did not put there itself.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command
func Execute() error {
	defer logger.Shutdown()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./config.yaml and ~/.config/modsync)")
	rootCmd.PersistentFlags().StringVar(&instancesPath, "instances", "", "modpack instances directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&targetPath, "target", "", "game installation directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(excludeCmd)
	rootCmd.AddCommand(historyCmd)
}

// loadConfig resolves configuration from file plus flag overrides. A
// missing config file is fine as long as the required paths arrive via
// flags; an explicitly named file must exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) || cfgFile != "" {
			return nil, err
		}
		cfg = &config.Config{}
	}

	if instancesPath != "" {
		cfg.InstancesPath = instancesPath
	}
	if targetPath != "" {
		cfg.TargetPath = targetPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setup loads config, initializes logging, and builds the engine.
// Callers own the returned engine and must Close it.
func setup() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	logCfg := logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
	}
	if cfg.Log.File != "" {
		logCfg.File = logger.FileConfig{
			Enabled: true,
			Path:    cfg.Log.File,
		}
	}
	if err := logger.Init(logCfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	eng, err := engine.New(cfg, logger.Get())
	if err != nil {
		return nil, nil, err
	}

	return eng, cfg, nil
}
