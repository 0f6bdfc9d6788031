package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/paultcochrane/BackPAN-Index/pkg/errors"
)

// Environment variables that override file settings.
const (
	EnvCacheDir = "BACKPAN_CACHE_DIR"
	EnvIndexURL = "BACKPAN_INDEX_URL"
	EnvNoCache  = "BACKPAN_NO_CACHE"
	EnvDebug    = "BACKPAN_DEBUG"
)

// SetValue sets a configuration value by key
// Supported keys:
//   - cache_dir, index_url, mirror_url, log_file: string
//   - log_level: debug, info, warn or error
//   - log_format: text or json
//   - no_cache, only_authors, debug: bool
//   - cache_ttl, http_timeout: duration such as "90m" or "1h"
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "cache_dir":
		c.Settings.CacheDir = value
	case "index_url":
		if strings.TrimSpace(value) == "" {
			return errors.ErrEmptyIndexURL
		}
		c.Settings.IndexURL = value
	case "mirror_url":
		c.Settings.MirrorURL = strings.TrimSuffix(value, "/")
	case "log_file":
		c.Settings.LogFile = value
	case "log_level":
		candidate := *c
		candidate.Settings.LogLevel = value
		if err := candidate.Validate(); err != nil {
			return err
		}
		c.Settings.LogLevel = value
	case "log_format":
		candidate := *c
		candidate.Settings.LogFormat = value
		if err := candidate.Validate(); err != nil {
			return err
		}
		c.Settings.LogFormat = value
	case "no_cache", "only_authors", "debug":
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return errors.ErrInvalidBoolValueFor(key, value)
		}
		switch key {
		case "no_cache":
			c.Settings.NoCache = boolVal
		case "only_authors":
			c.Settings.OnlyAuthors = boolVal
		default:
			c.Settings.Debug = boolVal
		}
	case "cache_ttl", "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		if d < 0 {
			if key == "cache_ttl" {
				return errors.ErrCacheTTLNegative
			}
			return errors.ErrHTTPTimeoutNegative
		}
		if key == "cache_ttl" {
			c.Settings.CacheTTL = d
		} else {
			c.Settings.HTTPTimeout = d
		}
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	value, ok := c.ToMap()[key]
	if !ok {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return value, nil
}

// ToMap flattens Settings into yaml-key/value pairs for display.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		field := settingsType.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		yamlKey := strings.Split(yamlTag, ",")[0]

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			strValue = v.String()
		case bool:
			strValue = strconv.FormatBool(v)
		case string:
			strValue = v
		default:
			strValue = fmt.Sprintf("%v", v)
		}

		result[yamlKey] = strValue
	}

	return result
}

// Keys returns the settable configuration keys in sorted order.
func (c *Config) Keys() []string {
	m := c.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplyEnv overrides settings from BACKPAN_* environment variables. Unset or
// empty variables leave the current value alone.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.Getenv)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvCacheDir); v != "" {
		c.Settings.CacheDir = v
	}
	if v := getenv(EnvIndexURL); v != "" {
		c.Settings.IndexURL = v
	}
	if v := getenv(EnvNoCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ErrInvalidBoolValueFor(EnvNoCache, v)
		}
		c.Settings.NoCache = b
	}
	if v := getenv(EnvDebug); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ErrInvalidBoolValueFor(EnvDebug, v)
		}
		c.Settings.Debug = b
	}
	return nil
}
