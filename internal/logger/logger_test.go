package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New(Config{Level: "info", Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Info("block added", "id", "b1")
	l.Debug("hidden at info level")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "block added") {
		t.Errorf("log file missing info line: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Errorf("debug line should be filtered: %q", out)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud", Dir: t.TempDir()}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	l, err := New(Config{Level: "error", Dir: t.TempDir(), Debug: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if l.GetLevel().String() != "debug" {
		t.Errorf("level = %s, want debug", l.GetLevel())
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("OrDiscard(nil) returned nil")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("OrDiscard should return the given logger")
	}
}
