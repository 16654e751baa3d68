package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_QuietWithoutFileIsNop(t *testing.T) {
	t.Parallel()

	l, err := New(Options{Level: "debug", Quiet: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("expected nop logger")
	}
}

func TestNew_FileOutputAndLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kanbanflow.log")
	l, err := New(Options{Level: "WARN", File: path, Quiet: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn")
	}
	l.Warn("drop ignored")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(b), "drop ignored") || !strings.Contains(string(b), "WARN") {
		t.Fatalf("unexpected log output: %q", string(b))
	}
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "x.log")
	l, err := New(Options{Level: "chatty", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.InfoLevel) || l.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level")
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()
	if OrNop(nil) == nil {
		t.Fatalf("expected logger")
	}
}
