package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"zcsbot/pkg/config"
)

func TestLoggerJSONEntryShape(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "info"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.With("component", "channel.telegram").Info("Dispatched update", "update_id", 42, "route", "command:start", "sent", true)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected log output")
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("unmarshal log entry: %v", err)
	}

	if entry.Level != "info" {
		t.Fatalf("level = %q, want %q", entry.Level, "info")
	}
	if entry.Message != "Dispatched update" {
		t.Fatalf("message = %q, want %q", entry.Message, "Dispatched update")
	}
	if entry.Component != "channel.telegram" {
		t.Fatalf("component = %q, want %q", entry.Component, "channel.telegram")
	}
	if entry.Timestamp == "" {
		t.Fatal("expected timestamp")
	}
	if got := entry.Fields["update_id"]; got != float64(42) {
		t.Fatalf("fields.update_id = %v, want 42", got)
	}
	if got := entry.Fields["route"]; got != "command:start" {
		t.Fatalf("fields.route = %v, want %q", got, "command:start")
	}
	if got := entry.Fields["sent"]; got != true {
		t.Fatalf("fields.sent = %v, want true", got)
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Ignored")
	if got := strings.TrimSpace(out.String()); got != "" {
		t.Fatalf("expected no output for info, got %q", got)
	}

	log.Error("Kept")
	if got := strings.TrimSpace(out.String()); got == "" {
		t.Fatal("expected output for error")
	}
}

func TestLoggerEnvironmentOverrides(t *testing.T) {
	t.Setenv("ZCSBOT_LOG_LEVEL", "debug")
	t.Setenv("ZCSBOT_LOG_FORMAT", "text")
	defer unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{Format: "json", Level: "error"}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Debug("Debug enabled", "component", "test")
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected debug output with env override")
	}
	if strings.HasPrefix(line, "{") {
		t.Fatalf("expected text format override, got %q", line)
	}
}

func TestLoggerDefaultsToTextFormat(t *testing.T) {
	unsetLoggingEnv(t)

	var out bytes.Buffer
	log, err := newWithWriter(config.LoggingConfig{}, &out)
	if err != nil {
		t.Fatalf("newWithWriter error: %v", err)
	}

	log.Info("Default format")
	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected log output")
	}
	if strings.HasPrefix(line, "{") {
		t.Fatalf("expected text format by default, got %q", line)
	}
}

func TestLoggerRejectsUnknownFormat(t *testing.T) {
	unsetLoggingEnv(t)

	if _, err := newWithWriter(config.LoggingConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := newWithWriter(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestLoggerRedactsSecrets(t *testing.T) {
	unsetLoggingEnv(t)

	const token = "123456:secret-token"

	for _, format := range []string{"json", "text"} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			log, err := newWithWriter(config.LoggingConfig{Format: format, Level: "info"}, &out, token, "  ")
			if err != nil {
				t.Fatalf("newWithWriter error: %v", err)
			}

			apiErr := errors.New("post https://api.telegram.org/bot" + token + "/sendMessage: timeout")
			log.With("endpoint", "bot"+token).Error("Send failed for "+token, "error", apiErr, "detail", token)

			got := out.String()
			if strings.Contains(got, token) {
				t.Fatalf("log output leaked token: %q", got)
			}
			if !strings.Contains(got, redactedMarker) {
				t.Fatalf("log output missing redaction marker: %q", got)
			}
		})
	}
}

func unsetLoggingEnv(t *testing.T) {
	t.Helper()
	_ = os.Unsetenv("ZCSBOT_LOG_LEVEL")
	_ = os.Unsetenv("ZCSBOT_LOG_FORMAT")
	_ = os.Unsetenv("ZCSBOT_LOG_ADD_SOURCE")
}
