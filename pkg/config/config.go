// Package config provides configuration management for backpan.
// It handles loading, validating and saving the YAML settings file, applies
// environment overrides and supplies sensible defaults when no file exists.
//
// A Config value is passed explicitly to the loader and facade; nothing here is
// process-global, so independent instances with different cache directories can
// coexist in one process.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
}

// Settings represents general application settings.
type Settings struct {
	// Cache settings
	CacheDir string        `yaml:"cache_dir,omitempty"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	NoCache  bool          `yaml:"no_cache"`

	// Upstream settings
	IndexURL    string        `yaml:"index_url"`
	MirrorURL   string        `yaml:"mirror_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// Ingestion settings
	OnlyAuthors bool `yaml:"only_authors"`

	// Output settings
	Debug    bool   `yaml:"debug"`
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // text, json
	LogFile   string `yaml:"log_file,omitempty"`
}

// Default configuration values.
const (
	// DefaultCacheTTL is how long cached index and database are trusted without
	// consulting the upstream server.
	DefaultCacheTTL = time.Hour

	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 5 * time.Minute

	// DefaultIndexURL is the gzipped listing of every file on BackPAN.
	DefaultIndexURL = "https://backpan.perl.org/backpan-full-index.txt.gz"

	// DefaultMirrorURL is the base used to build download URLs for files.
	DefaultMirrorURL = "https://backpan.perl.org"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		cacheDir = filepath.Join(os.TempDir(), fsutil.AppName)
	}

	return &Config{
		Settings: Settings{
			CacheDir:    cacheDir,
			CacheTTL:    DefaultCacheTTL,
			IndexURL:    DefaultIndexURL,
			MirrorURL:   DefaultMirrorURL,
			HTTPTimeout: DefaultHTTPTimeout,
			OnlyAuthors: true,
			LogLevel:    "info",
			LogFormat:   "text",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader. Keys absent from
// the document keep their default values.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return config, nil
}

// SaveConfig saves configuration to a file via a temporary file and rename.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(absPath), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if s.CacheTTL < 0 {
		return errors.ErrCacheTTLNegative
	}
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if strings.TrimSpace(s.IndexURL) == "" {
		return errors.ErrEmptyIndexURL
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	switch strings.ToLower(s.LogFormat) {
	case "text", "json":
	default:
		return errors.ErrInvalidLogFormatWithDetails(s.LogFormat)
	}
	return nil
}

// EffectiveLogLevel returns "debug" when the debug switch is on, else LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Settings.Debug {
		return "debug"
	}
	return c.Settings.LogLevel
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, fsutil.AppName, "config.yaml"), nil
}

// GetCacheDir returns the base cache directory from settings.
func (c *Config) GetCacheDir() string {
	return c.Settings.CacheDir
}

// applyDefaults fills in zero values that YAML may have set explicitly.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.CacheTTL == 0 {
		c.Settings.CacheTTL = defaults.Settings.CacheTTL
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
	if c.Settings.CacheDir == "" {
		c.Settings.CacheDir = defaults.Settings.CacheDir
	}
	if c.Settings.IndexURL == "" {
		c.Settings.IndexURL = defaults.Settings.IndexURL
	}
	if c.Settings.MirrorURL == "" {
		c.Settings.MirrorURL = defaults.Settings.MirrorURL
	}
	c.Settings.MirrorURL = strings.TrimSuffix(c.Settings.MirrorURL, "/")
}
