package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("production", "info", &buf)

	log.Info("login", "user_id", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "login" {
		t.Fatalf("expected msg=login, got %v", entry["msg"])
	}
	if entry["service"] != "profitpath-api" {
		t.Fatalf("expected service attribute, got %v", entry["service"])
	}
}

func TestNew_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := New("development", "debug", &buf)

	log.Debug("dbg", "a", 1)

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "a=1") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
