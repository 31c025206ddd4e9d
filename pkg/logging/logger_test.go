package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("Default level = %s, want info", cfg.Level)
	}
	if cfg.Pretty {
		t.Error("Default output should be JSON, not pretty")
	}
}

func TestDefaultConfig_EnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")

	if cfg := DefaultConfig(); cfg.Level != LevelDebug {
		t.Errorf("Level with EPC_LOG_LEVEL=debug = %s, want debug", cfg.Level)
	}
}

func TestSetup_RequestEventFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Output: buf})

	// The shape every request-path event carries (see the guidelines at
	// the bottom of logger.go).
	logger.Warn().
		Str("endpoint", "/domestic/search").
		Int("status", 401).
		Str("kind", "auth").
		Msg("EPC request error")

	output := buf.String()
	for _, field := range []string{`"endpoint":"/domestic/search"`, `"status":401`, `"kind":"auth"`} {
		if !strings.Contains(output, field) {
			t.Errorf("Event missing field %s: %s", field, output)
		}
	}
}

func TestSetup_PrettyOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := Setup(Config{Level: LevelInfo, Pretty: true, Output: buf})

	logger.Info().Int("pages", 3).Msg("Search complete")

	output := buf.String()
	if strings.HasPrefix(strings.TrimSpace(output), "{") {
		t.Errorf("Pretty output should not be JSON: %s", output)
	}
	if !strings.Contains(output, "Search complete") {
		t.Errorf("Pretty output missing message: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zerolog.Level
	}{
		{LevelDebug, zerolog.DebugLevel},
		{LevelInfo, zerolog.InfoLevel},
		{LevelWarn, zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"verbose", zerolog.InfoLevel}, // unknown falls back to info
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewLogger_ComponentField(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelInfo, Output: buf})

	logger := NewLogger("pagination")
	logger.Info().Int("page", 2).Msg("Page fetched")

	output := buf.String()
	if !strings.Contains(output, `"component":"pagination"`) {
		t.Errorf("Event missing component field: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: LevelWarn, Output: buf})

	// Pagination progress is debug/info noise; only the clamp warning
	// should survive at warn level.
	logger := NewLogger("pagination")
	logger.Debug().Str("search_after", "25").Msg("Page fetched")
	logger.Info().Int("total_records", 50).Msg("Search complete")
	logger.Warn().Int("clamped", 5000).Msg("Page size exceeds API maximum, clamping")

	output := buf.String()
	if strings.Contains(output, "Page fetched") {
		t.Error("Debug event should be filtered at warn level")
	}
	if strings.Contains(output, "Search complete") {
		t.Error("Info event should be filtered at warn level")
	}
	if !strings.Contains(output, "clamping") {
		t.Errorf("Warn event missing at warn level: %s", output)
	}
}
