package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
	"github.com/paultcochrane/BackPAN-Index/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.LogFormat)
	assert.Equal(t, time.Hour, cfg.Settings.CacheTTL)
	assert.Equal(t, DefaultIndexURL, cfg.Settings.IndexURL)
	assert.Equal(t, DefaultMirrorURL, cfg.Settings.MirrorURL)
	assert.True(t, cfg.Settings.OnlyAuthors)
	assert.False(t, cfg.Settings.NoCache)
	assert.False(t, cfg.Settings.Debug)
	assert.NotEmpty(t, cfg.Settings.CacheDir)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  cache_dir: /var/cache/backpan
  cache_ttl: 30m
  log_level: debug
  only_authors: false
  mirror_url: https://mirror.example.com/`

	err := os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault)
	require.NoError(t, err)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/var/cache/backpan", cfg.Settings.CacheDir)
	assert.Equal(t, 30*time.Minute, cfg.Settings.CacheTTL)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.False(t, cfg.Settings.OnlyAuthors)
	assert.Equal(t, "https://mirror.example.com", cfg.Settings.MirrorURL)
	assert.Equal(t, DefaultIndexURL, cfg.Settings.IndexURL, "unset keys keep defaults")
}

func TestLoadConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Settings, cfg.Settings)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)

	_, err = LoadConfigFromReader(strings.NewReader("settings: [unclosed"))
	assert.ErrorIs(t, err, errors.ErrConfigParse)

	_, err = LoadConfigFromReader(strings.NewReader("settings:\n  log_level: chatty\n"))
	assert.ErrorIs(t, err, errors.ErrConfigValidation)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.CacheTTL = 2 * time.Hour
	cfg.Settings.NoCache = true

	configPath := filepath.Join(t.TempDir(), "nested", "test-config.yaml")

	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "cache_ttl: 2h0m0s")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Settings, loadedCfg.Settings)

	_, err = os.Stat(configPath + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file should be renamed away")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "negative ttl", mutate: func(c *Config) { c.Settings.CacheTTL = -time.Second }, wantErr: errors.ErrCacheTTLNegative},
		{name: "negative timeout", mutate: func(c *Config) { c.Settings.HTTPTimeout = -1 }, wantErr: errors.ErrHTTPTimeoutNegative},
		{name: "empty index url", mutate: func(c *Config) { c.Settings.IndexURL = "  " }, wantErr: errors.ErrEmptyIndexURL},
		{name: "bad log level", mutate: func(c *Config) { c.Settings.LogLevel = "verbose" }, wantErr: errors.ErrInvalidLogLevel},
		{name: "upper-case log level", mutate: func(c *Config) { c.Settings.LogLevel = "WARN" }},
		{name: "json log format", mutate: func(c *Config) { c.Settings.LogFormat = "json" }},
		{name: "bad log format", mutate: func(c *Config) { c.Settings.LogFormat = "xml" }, wantErr: errors.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEffectiveLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.EffectiveLogLevel())
	cfg.Settings.Debug = true
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestSetAndGetValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    string
		wantErr error
	}{
		{key: "cache_dir", value: "/tmp/bp", want: "/tmp/bp"},
		{key: "index_url", value: "http://localhost/idx.gz", want: "http://localhost/idx.gz"},
		{key: "index_url", value: "", wantErr: errors.ErrEmptyIndexURL},
		{key: "mirror_url", value: "http://m.example/", want: "http://m.example"},
		{key: "no_cache", value: "true", want: "true"},
		{key: "only_authors", value: "0", want: "false"},
		{key: "debug", value: "maybe", wantErr: errors.ErrInvalidBoolValue},
		{key: "cache_ttl", value: "90m", want: "1h30m0s"},
		{key: "cache_ttl", value: "-1m", wantErr: errors.ErrCacheTTLNegative},
		{key: "http_timeout", value: "10s", want: "10s"},
		{key: "log_level", value: "warn", want: "warn"},
		{key: "log_level", value: "loud", wantErr: errors.ErrInvalidLogLevel},
		{key: "log_format", value: "json", want: "json"},
		{key: "log_format", value: "xml", wantErr: errors.ErrInvalidLogFormat},
		{key: "colour", value: "blue", wantErr: errors.ErrUnknownConfigKey},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.SetValue(tt.key, tt.value)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			got, err := cfg.GetValue(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := DefaultConfig().GetValue("nonexistent")
	assert.ErrorIs(t, err, errors.ErrUnknownConfigKey)
}

func TestToMapAndKeys(t *testing.T) {
	cfg := DefaultConfig()
	m := cfg.ToMap()

	for _, key := range []string{"cache_dir", "cache_ttl", "no_cache", "index_url", "mirror_url", "http_timeout", "only_authors", "debug", "log_level", "log_format", "log_file"} {
		assert.Contains(t, m, key)
	}
	assert.Equal(t, "1h0m0s", m["cache_ttl"])
	assert.Equal(t, "true", m["only_authors"])

	keys := cfg.Keys()
	assert.Len(t, keys, len(m))
	assert.IsNonDecreasing(t, keys)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCacheDir: "/srv/backpan",
		EnvIndexURL: "http://127.0.0.1/index.gz",
		EnvNoCache:  "1",
		EnvDebug:    "true",
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, "/srv/backpan", cfg.Settings.CacheDir)
	assert.Equal(t, "http://127.0.0.1/index.gz", cfg.Settings.IndexURL)
	assert.True(t, cfg.Settings.NoCache)
	assert.True(t, cfg.Settings.Debug)

	t.Run("invalid bool", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.applyEnv(func(k string) string {
			if k == EnvNoCache {
				return "sometimes"
			}
			return ""
		})
		assert.ErrorIs(t, err, errors.ErrInvalidBoolValue)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv(EnvCacheDir, "/from/env")
		cfg := DefaultConfig()
		require.NoError(t, cfg.ApplyEnv())
		assert.Equal(t, "/from/env", cfg.Settings.CacheDir)
	})
}

func TestGetDefaultConfigPath(t *testing.T) {
	path, err := GetDefaultConfigPath()
	if err != nil {
		t.Skip("no user config dir on this system")
	}
	assert.Equal(t, "config.yaml", filepath.Base(path))
	assert.Equal(t, fsutil.AppName, filepath.Base(filepath.Dir(path)))
}
