package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func initTestLogger(t *testing.T, verbose bool) (*bytes.Buffer, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "logs", "spec_synth.log")
	console := &bytes.Buffer{}
	if err := Init(console, logPath, verbose); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(Close)
	return console, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(data)
}

func TestLoggerInitCreatesFile(t *testing.T) {
	console, logPath := initTestLogger(t, false)

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatal("Log file was not created")
	}

	Info("Extracted %d endpoints", 3)
	if !strings.Contains(console.String(), "Extracted 3 endpoints") {
		t.Errorf("Console output missing info message: %s", console.String())
	}

	logStr := readLog(t, logPath)
	if !strings.Contains(logStr, "[INFO] Extracted 3 endpoints") {
		t.Errorf("Log file missing info line: %s", logStr)
	}
}

func TestLoggerLevels(t *testing.T) {
	console, logPath := initTestLogger(t, false)

	Debug("Debug message")
	Info("Info message")
	Warn("Warn message")
	Error("Error message")

	logStr := readLog(t, logPath)
	for _, lvl := range []string{"[DEBUG]", "[INFO]", "[WARN]", "[ERROR]"} {
		if !strings.Contains(logStr, lvl) {
			t.Errorf("Log file missing %s level", lvl)
		}
	}

	if strings.Contains(console.String(), "Debug message") {
		t.Error("Console should not show DEBUG when verbose=false")
	}
}

func TestLoggerVerbose(t *testing.T) {
	console, _ := initTestLogger(t, true)

	Debug("Debug message")

	if !strings.Contains(console.String(), "[DEBUG] Debug message") {
		t.Errorf("Console should show DEBUG when verbose=true, got %q", console.String())
	}
	if !IsVerbose() {
		t.Error("IsVerbose() should return true")
	}
}

func TestLoggerWithoutFileSink(t *testing.T) {
	console := &bytes.Buffer{}
	if err := Init(console, "", false); err != nil {
		t.Fatalf("Init without log file failed: %v", err)
	}
	defer Close()

	Warn("no file here")
	LogSourceError("Broken.java", errors.New("unbalanced braces"), "parse")

	if GetLogFilePath() != "" {
		t.Errorf("GetLogFilePath() = %q, expected empty", GetLogFilePath())
	}
	if !strings.Contains(console.String(), "no file here") {
		t.Errorf("Console missing warning: %s", console.String())
	}
}

func TestLogSourceError(t *testing.T) {
	console, logPath := initTestLogger(t, false)

	LogSourceError("/src/UserController.java", os.ErrNotExist, "read")

	logStr := readLog(t, logPath)
	if !strings.Contains(logStr, "[SOURCE_ERROR]") {
		t.Error("Log file missing SOURCE_ERROR marker")
	}
	if !strings.Contains(logStr, "/src/UserController.java") || !strings.Contains(logStr, "Stage: read") {
		t.Errorf("Log file missing details: %s", logStr)
	}
	if strings.Contains(console.String(), "SOURCE_ERROR") {
		t.Error("Console should not show detailed source errors")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("Level.String() = %s, expected %s", got, tt.expected)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	console, logPath := initTestLogger(t, false)

	var diags Diagnostics
	diags.Add(LevelWarn, "Broken.java", "skipped: %s", "unexpected EOF")
	diags.Add(LevelDebug, "", "dropped rule on receiver %q", "http")

	more := Diagnostics{{Level: LevelError, Message: "boom"}}
	diags.Append(more)

	if len(diags) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(diags))
	}
	if diags.Count(LevelWarn) != 2 {
		t.Errorf("Count(LevelWarn) = %d, expected 2", diags.Count(LevelWarn))
	}
	if diags[0].String() != "[WARN] Broken.java: skipped: unexpected EOF" {
		t.Errorf("unexpected String(): %s", diags[0].String())
	}

	diags.Flush()
	if !strings.Contains(console.String(), "Broken.java") {
		t.Errorf("Flush did not reach console: %s", console.String())
	}
	if !strings.Contains(readLog(t, logPath), "dropped rule") {
		t.Error("Flush did not record debug diagnostic in file")
	}
}
