package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Expected valid JSON output, got error: %v (%s)", err, line)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestNew(t *testing.T) {
	for _, env := range []string{EnvDevelopment, EnvTest, "production"} {
		logger := New(env)
		if logger == nil {
			t.Fatalf("Expected logger to be created for %s", env)
		}
		if logger.GetZerolog() == nil {
			t.Errorf("Expected zerolog instance to be available for %s", env)
		}
	}
}

func TestNewWithWriter_Development(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(EnvDevelopment, &buf)

	logger.Debug("rendering workbook", map[string]interface{}{"sheet": "Summary"})

	output := buf.String()
	if !strings.Contains(output, "rendering workbook") {
		t.Error("Expected debug output in development")
	}
	if json.Valid([]byte(strings.TrimSpace(output))) {
		t.Error("Expected console output, not JSON, in development")
	}
}

func TestNewWithWriter_Levels(t *testing.T) {
	tests := []struct {
		env       string
		wantDebug bool
		wantInfo  bool
	}{
		{env: EnvDevelopment, wantDebug: true, wantInfo: true},
		{env: "production", wantDebug: false, wantInfo: true},
		{env: EnvTest, wantDebug: false, wantInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(tt.env, &buf)

			logger.Debug("debug message", nil)
			if got := strings.Contains(buf.String(), "debug message"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.wantDebug)
			}

			buf.Reset()
			logger.Info("info message", nil)
			if got := strings.Contains(buf.String(), "info message"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", got, tt.wantInfo)
			}

			buf.Reset()
			logger.Warn("warn message", nil)
			if !strings.Contains(buf.String(), "warn message") {
				t.Error("Expected warnings to be logged in every environment")
			}
		})
	}
}

func TestFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Info("report exported", map[string]interface{}{
		"format": "pdf",
		"bytes":  2048,
	})
	logger.Warn("report overflowed", map[string]interface{}{
		"risk_factors": 14,
	})
	logger.Error("export failed", errors.New("disk full"), map[string]interface{}{
		"format": "xlsx",
	})

	entries := decodeLines(t, &buf)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 log entries, got %d", len(entries))
	}

	if entries[0]["message"] != "report exported" || entries[0]["format"] != "pdf" || entries[0]["bytes"] != float64(2048) {
		t.Errorf("Unexpected info entry: %v", entries[0])
	}
	if entries[1]["level"] != "warn" || entries[1]["risk_factors"] != float64(14) {
		t.Errorf("Unexpected warn entry: %v", entries[1])
	}
	if entries[2]["level"] != "error" || entries[2]["error"] != "disk full" || entries[2]["format"] != "xlsx" {
		t.Errorf("Unexpected error entry: %v", entries[2])
	}
	if _, ok := entries[0]["time"]; !ok {
		t.Error("Expected timestamp field")
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	child := logger.With(map[string]interface{}{
		"component": "cli",
	}).WithRequestID("req-12345")
	child.Info("test message", nil)

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	if entries[0]["component"] != "cli" {
		t.Error("Expected log output to contain component field from context")
	}
	if entries[0]["request_id"] != "req-12345" {
		t.Error("Expected log output to contain request ID")
	}

	buf.Reset()
	logger.Info("parent message", nil)
	if strings.Contains(buf.String(), "req-12345") {
		t.Error("Expected parent logger to be unaffected by child fields")
	}
}

func TestNilFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	// Should not panic with nil fields
	logger.Info("message with nil fields", nil)
	logger.With(nil).Info("child with nil fields", nil)

	output := buf.String()
	if !strings.Contains(output, "message with nil fields") || !strings.Contains(output, "child with nil fields") {
		t.Error("Expected messages to be logged even with nil fields")
	}
}

func TestNop(t *testing.T) {
	// Should discard without panicking
	Nop().Error("ignored", errors.New("ignored"), map[string]interface{}{"k": "v"})
}
