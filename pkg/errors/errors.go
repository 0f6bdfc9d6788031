// Package errors defines the sentinel errors shared by the backpan packages and
// small helpers for adding context while keeping errors.Is working.
//
// Fatal load errors (ErrFetch, ErrExtract, ErrStore) abort the current load and
// propagate to the caller. Lines that cannot be parsed are never turned into errors.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Load errors.
var (
	// ErrFetch is returned when the upstream index cannot be downloaded or the
	// server answers with a non-success status.
	ErrFetch = fmt.Errorf("failed to fetch index")

	// ErrExtract is returned when the downloaded archive is corrupt or uses an
	// unsupported compression format.
	ErrExtract = fmt.Errorf("failed to extract index")

	// ErrStore is returned for schema or constraint failures in the local database.
	ErrStore = fmt.Errorf("store error")

	// ErrNotFound is returned by point lookups that match no row.
	ErrNotFound = fmt.Errorf("not found")
)

// Download errors.
var (
	// ErrInvalidPath is returned for a download directory that is empty or relative.
	ErrInvalidPath = fmt.Errorf("invalid path")

	// ErrSizeMismatch is returned when a downloaded file differs in size from the index.
	ErrSizeMismatch = fmt.Errorf("downloaded size does not match index")
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")

	// ErrCacheTTLNegative is returned when cache TTL is set to a negative value.
	ErrCacheTTLNegative = fmt.Errorf("cache_ttl cannot be negative")

	// ErrHTTPTimeoutNegative is returned when HTTP timeout is set to a negative value.
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")

	// ErrEmptyIndexURL is returned when index_url is blank.
	ErrEmptyIndexURL = fmt.Errorf("index_url cannot be empty")

	ErrInvalidLogLevel  = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat = fmt.Errorf("invalid log format")
	ErrInvalidBoolValue = fmt.Errorf("invalid boolean value")
	ErrUnknownConfigKey = fmt.Errorf("unknown configuration key")
)

// Cache errors.
var (
	ErrCacheDirectory = fmt.Errorf("cache directory cannot be empty")
	ErrCacheClean     = fmt.Errorf("failed to clean cache")
)

// Wrap wraps an error with additional context.
// If the error is nil, Wrap returns nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
// If the error is nil, Wrapf returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Mark tags err with the given sentinel so that both errors.Is(err, sentinel)
// and errors.Is(err, <original cause>) hold.
func Mark(err, sentinel error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// ErrInvalidLogLevelWithDetails wraps ErrInvalidLogLevel with the rejected level.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrInvalidLogFormatWithDetails wraps ErrInvalidLogFormat with the rejected format.
func ErrInvalidLogFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidLogFormat, format)
}

// ErrUnknownConfigKeyWithName wraps ErrUnknownConfigKey with the rejected key.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}

// ErrInvalidBoolValueFor wraps ErrInvalidBoolValue with the key and value.
func ErrInvalidBoolValueFor(key, value string) error {
	return fmt.Errorf("%w for %s: %s", ErrInvalidBoolValue, key, value)
}

// ErrStatus builds an ErrFetch for a non-success HTTP response.
func ErrStatus(url string, status int) error {
	return fmt.Errorf("%w: %s: unexpected status code: %d", ErrFetch, url, status)
}
