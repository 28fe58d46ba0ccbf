package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitialize(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	if Verbosity() != LevelInfo {
		t.Errorf("expected verbosity %d, got %d", LevelInfo, Verbosity())
	}
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelTrace, &buf)

	Info("test info", "key", "value")
	Debug("test debug", "key", "value")
	Trace("test trace", "key", "value")
	Warn("test warn", "key", "value")
	Error("test error", "key", "value")

	for _, want := range []string{"test info", "test debug", "test trace", "test warn", "test error"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestQuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelQuiet, &buf)

	Info("hidden")
	Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", buf.String())
	}

	Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warnings at quiet level")
	}
}

func TestVerbosityLevels(t *testing.T) {
	tests := []struct {
		level   int
		isInfo  bool
		isDebug bool
	}{
		{LevelQuiet, false, false},
		{LevelInfo, true, false},
		{LevelDebug, true, true},
		{LevelTrace, true, true},
	}

	var buf bytes.Buffer
	for _, tt := range tests {
		Initialize(tt.level, &buf)

		if IsInfo() != tt.isInfo {
			t.Errorf("at level %d: expected IsInfo()=%v, got %v", tt.level, tt.isInfo, IsInfo())
		}
		if IsDebug() != tt.isDebug {
			t.Errorf("at level %d: expected IsDebug()=%v, got %v", tt.level, tt.isDebug, IsDebug())
		}
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	Progress("Importing %d/%d", 5, 10)
	ProgressDone()

	if !strings.Contains(buf.String(), "Importing 5/10 done") {
		t.Errorf("unexpected progress output %q", buf.String())
	}
}

func TestLeveledDemotesInfo(t *testing.T) {
	var buf bytes.Buffer
	Initialize(LevelInfo, &buf)

	var l Leveled
	l.Info("retrying request", "url", "http://example")
	if buf.Len() != 0 {
		t.Errorf("expected client info to be hidden at -v, got %q", buf.String())
	}

	l.Warn("giving up", "attempts", 4)
	if !strings.Contains(buf.String(), "giving up") {
		t.Error("expected client warnings to be visible")
	}
}
