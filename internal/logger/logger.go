package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// OutputFormat selects the slog handler used for log lines.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Rotation limits for the optional log file.
const (
	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
)

var (
	// outputMu guards the writers and format the handler is built from.
	outputMu   sync.Mutex
	testOutput io.Writer
	fileOutput io.Writer
	currentFmt = FormatText

	logger       atomic.Pointer[slog.Logger]
	currentLevel = new(slog.LevelVar)
)

// Fields is a type alias for log fields to make the API cleaner
type Fields map[string]interface{}

func init() {
	rebuild()
}

// SetTestOutput sets the output writer for testing purposes
func SetTestOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	testOutput = w
}

// UnsetTestOutput resets the test output to nil
func UnsetTestOutput() {
	outputMu.Lock()
	defer outputMu.Unlock()
	testOutput = nil
}

// SetLogFile routes log output to a size-rotated file. An empty path restores stderr.
func SetLogFile(path string) {
	outputMu.Lock()
	if path == "" {
		fileOutput = nil
	} else {
		fileOutput = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			LocalTime:  true,
		}
	}
	outputMu.Unlock()
	rebuild()
}

// Progress goes to stderr so that query output on stdout stays clean.
// Callers hold outputMu.
func outputLocked() io.Writer {
	if testOutput != nil {
		return testOutput
	}
	if fileOutput != nil {
		return fileOutput
	}
	return os.Stderr
}

// ParseLevel maps a level name to a slog level, falling back to info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat maps a format name to an OutputFormat, falling back to text.
func ParseFormat(format string) OutputFormat {
	if strings.EqualFold(format, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// InitLogger sets the level and handler format of the global logger.
func InitLogger(logLevel string, format OutputFormat) {
	currentLevel.Set(ParseLevel(logLevel))
	outputMu.Lock()
	currentFmt = format
	outputMu.Unlock()
	rebuild()
}

func rebuild() {
	outputMu.Lock()
	defer outputMu.Unlock()

	opts := &slog.HandlerOptions{Level: currentLevel}
	var handler slog.Handler
	if currentFmt == FormatJSON {
		handler = slog.NewJSONHandler(outputLocked(), opts)
	} else {
		handler = slog.NewTextHandler(outputLocked(), opts)
	}
	logger.Store(slog.New(handler))
}

// GetLogger returns the configured logger instance.
func GetLogger() *slog.Logger {
	return logger.Load()
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, mergeFields(fields...)...)
}

// Debug logs a debug message (only shown when debug level is enabled).
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, mergeFields(fields...)...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, mergeFields(fields...)...)
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, mergeFields(fields...)...)
}

// Success logs a success message as info with success indicator.
func Success(msg string, fields ...Fields) {
	attrs := mergeFields(fields...)
	attrs = append(attrs, "status", "success")
	GetLogger().Info(msg, attrs...)
}

// DebugEnabled reports whether debug lines are currently emitted.
func DebugEnabled() bool {
	return currentLevel.Level() <= slog.LevelDebug
}

// mergeFields merges multiple field maps into one slice of key-value pairs for slog.
// Later maps win on duplicate keys.
func mergeFields(fields ...Fields) []interface{} {
	merged := make(Fields)
	order := make([]string, 0)
	for _, field := range fields {
		for k, v := range field {
			if _, seen := merged[k]; !seen {
				order = append(order, k)
			}
			merged[k] = v
		}
	}
	result := make([]interface{}, 0, len(order)*2)
	for _, k := range order {
		result = append(result, k, merged[k])
	}
	return result
}
