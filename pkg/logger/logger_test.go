package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	originalLogger := Logger
	originalLevel := Level()
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(originalLevel)
	})

	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &buf
}

func TestLogLevelFiltering(t *testing.T) {
	buf := captureLogger(t)

	SetLogLevel(INFO)
	Debug("debug message should be filtered")
	Info("info message should appear")

	output := buf.String()
	if strings.Contains(output, "debug message should be filtered") {
		t.Fatalf("debug message was logged at INFO level:\n%s", output)
	}
	if !strings.Contains(output, "info message should appear") {
		t.Fatalf("info message was not logged:\n%s", output)
	}
}

func TestWarnSitsBetweenInfoAndError(t *testing.T) {
	buf := captureLogger(t)

	SetLogLevel(WARN)
	Info("quiet info")
	Warn("loud warning")
	Error("loud error")

	output := buf.String()
	if strings.Contains(output, "quiet info") {
		t.Fatalf("info logged at WARN level:\n%s", output)
	}
	if !strings.Contains(output, "loud warning") || !strings.Contains(output, "loud error") {
		t.Fatalf("expected warning and error in output:\n%s", output)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DEBUG,
		" INFO ":  INFO,
		"warning": WARN,
		"error":   ERROR,
	}
	for input, want := range tests {
		got, err := ParseLogLevel(input)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %d, want %d", input, got, want)
		}
	}

	if _, err := ParseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigureWritesToFile(t *testing.T) {
	captureLogger(t)

	path := filepath.Join(t.TempDir(), "logs", "quiz.log")
	if err := Configure(Options{Level: "debug", File: path}); err != nil {
		t.Fatalf("Configure returned error: %v", err)
	}
	Debug("written to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("expected log file to contain message, got %q", string(data))
	}
}

func TestConfigureReportsInvalidLevel(t *testing.T) {
	captureLogger(t)

	if err := Configure(Options{Level: "chatty"}); err == nil {
		t.Fatal("expected error for invalid level")
	}
	if Level() != INFO {
		t.Fatalf("expected fallback to INFO, got %d", Level())
	}
}
