// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel overrides the default log level.
const EnvLogLevel = "EPC_LOG_LEVEL"

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns the default logger configuration: JSON to stderr at
// info level, overridable through EPC_LOG_LEVEL.
func DefaultConfig() Config {
	cfg := Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Level = LogLevel(level)
	}
	return cfg
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// parseLevel converts LogLevel to zerolog.Level. Unknown levels fall back
// to info rather than erroring; a typo in EPC_LOG_LEVEL must not silence
// the CLI.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a logger tagged with the given component name
// (epc-client, pagination, cache, pacer, bulk).
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Cache operations (hit/miss, key)
//   - Pagination flow (page counters, tokens, pacing waits)
//   - Internal state changes
//
// Info: Normal operation events
//   - Completed searches and downloads
//   - Pagination stops (page limit, record ceiling, exhausted data)
//   - Manual-mode resume tokens
//
// Warn: Warning conditions that don't prevent operation
//   - Clamped page sizes
//   - Cache errors (fallback to direct request)
//   - Pacer falling back to local state
//
// Error: Error conditions requiring attention
//   - Failed requests
//   - Authentication failures
//   - Configuration errors
//
// Context Fields:
//   - endpoint: API endpoint path
//   - status: HTTP status code
//   - kind: Error classification (validation, no_results, transport, auth)
//   - page, total_records: Pagination progress
//   - search_after: Continuation token
