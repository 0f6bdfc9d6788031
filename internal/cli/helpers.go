package cli

import (
	"context"
	"fmt"

	"github.com/paultcochrane/BackPAN-Index/internal/logger"
	"github.com/paultcochrane/BackPAN-Index/pkg/config"
	"github.com/paultcochrane/BackPAN-Index/pkg/index"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoCache    *bool
	CacheDir   *string
	IndexURL   *string
	AllPaths   *bool
)

// loadConfig reads the config file, applies environment and flag overrides
// and configures the logger from the result.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := getConfigPath(); path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	// Override config with CLI flags if provided
	if NoCache != nil && *NoCache {
		cfg.Settings.NoCache = true
	}
	if CacheDir != nil && *CacheDir != "" {
		cfg.Settings.CacheDir = *CacheDir
	}
	if IndexURL != nil && *IndexURL != "" {
		cfg.Settings.IndexURL = *IndexURL
	}
	if AllPaths != nil && *AllPaths {
		cfg.Settings.OnlyAuthors = false
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.SetLogFile(cfg.Settings.LogFile)
	logger.InitLogger(cfg.EffectiveLogLevel(), logger.ParseFormat(cfg.Settings.LogFormat))
	return cfg, nil
}

// openIndex loads the configuration and brings the index up to date.
func openIndex(ctx context.Context) (*index.Index, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return index.New(ctx, cfg)
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Warn("Failed to get default config path, using defaults", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}
