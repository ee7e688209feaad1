package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerDefault(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
}

func TestLoggerLevelsWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Debug("debug message", "key", "value")
	logger.Info("info message")
	logger.Warn("warning message")
	logger.Error("error message")
	_ = logger.Sync()

	output := buf.String()
	for _, want := range []string{"debug message", "key", "value", "info message", "warning message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestLoggerLevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Debug("should not appear")
	logger.Info("should not appear either")
	_ = logger.Sync()

	if strings.Contains(buf.String(), "should not appear") {
		t.Errorf("expected debug/info to be filtered, got: %s", buf.String())
	}
}

func TestPrintfStyleLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Debugf("tag=%d op=%s", 7, "READ")
	logger.Printf("fallback %s", "printf")
	_ = logger.Sync()

	output := buf.String()
	if !strings.Contains(output, "tag=7 op=READ") {
		t.Errorf("expected formatted debug line, got: %s", output)
	}
	if !strings.Contains(output, "fallback printf") {
		t.Errorf("expected Printf output, got: %s", output)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	defer SetDefault(NewLogger(nil))

	Debug("debug message", "key", "value")
	Info("info message")
	Warn("warning message")
	Error("error message")
	_ = Default().Sync()

	output := buf.String()
	for _, want := range []string{"debug message", "info message", "warning message", "error message"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got: %s", want, output)
		}
	}
}
