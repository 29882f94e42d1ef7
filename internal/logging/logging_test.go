package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var timeLayout = regexp.MustCompile(`"time":"\d{4}-\d{2}-\d{2}"`)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "warn" {
		t.Errorf("DefaultConfig().Level = %s, want warn", cfg.Level)
	}
	if cfg.Format != "text" {
		t.Errorf("DefaultConfig().Format = %s, want text", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("DefaultConfig().Output = %s, want stderr", cfg.Output)
	}
	if cfg.TimeFormat == "" {
		t.Error("DefaultConfig().TimeFormat should not be empty")
	}
}

func TestSetup_Formats(t *testing.T) {
	for _, format := range []string{"text", "json", ""} {
		if err := Setup(Config{Level: "debug", Format: format, Output: "discard"}); err != nil {
			t.Errorf("Setup(format=%q) error = %v", format, err)
		}
	}
}

func TestSetup_InvalidFormat(t *testing.T) {
	if err := Setup(Config{Level: "info", Format: "xml", Output: "discard"}); err == nil {
		t.Error("Setup() with invalid format should return error")
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	if err := Setup(Config{Level: "verbose", Format: "text", Output: "discard"}); err == nil {
		t.Error("Setup() with invalid level should return error")
	}
}

func TestSetup_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "nested", "detect.log")
	t.Cleanup(func() { Close() })

	err := Setup(Config{
		Level:      "info",
		Format:     "json",
		Output:     logFile,
		TimeFormat: "2006-01-02",
	})
	if err != nil {
		t.Fatalf("Setup() with file output error = %v", err)
	}

	Info("proxy configuration detected", "source", "GroupPolicy")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"source":"GroupPolicy"`) {
		t.Errorf("log file should contain the source attribute, got: %s", data)
	}
	if !timeLayout.Match(data) {
		t.Errorf("time should use the configured layout, got: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Errorf("ParseLevel(%q) error = %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestWithComponent(t *testing.T) {
	if WithComponent("detect") == nil {
		t.Error("WithComponent() should return a logger")
	}
}

func TestClose_NoFile(t *testing.T) {
	if err := Setup(Config{Output: "discard"}); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := Close(); err != nil {
		t.Errorf("Close() without file error = %v", err)
	}
}
