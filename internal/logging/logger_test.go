package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "warn"); err != nil {
		t.Fatalf("InitWriter: %v", err)
	}
	defer func() { Logger = nil }()

	Info("hidden")
	Warn("shown", "id", 7)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "id=7") {
		t.Errorf("expected warn line with id=7, got %s", out)
	}
}

func TestInitWriterRejectsBadLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWriter(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestHelpersWithoutInit(t *testing.T) {
	Logger = nil
	Info("x")
	Debug("x")
	Warn("x")
	Error("x")
	if WithPrefix("loader") == nil {
		t.Error("WithPrefix should never return nil")
	}
}

func TestInitCreatesLogFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello")
	Close()
	Logger = nil

	matches, err := filepath.Glob(filepath.Join(dir, "logs", "catalog-*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one log file, got %v (%v)", matches, err)
	}
	b, _ := os.ReadFile(matches[0])
	if !strings.Contains(string(b), "hello") {
		t.Errorf("log file missing message: %s", b)
	}
}
