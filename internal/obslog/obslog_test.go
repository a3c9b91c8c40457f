package obslog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitJSONConsole(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	var buf bytes.Buffer
	if err := Init(Options{Level: "debug", Format: "json", Console: true, ConsoleTo: &buf}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Debug("duel_select", zap.String("game_id", "duel-1"))
	_ = L().Sync()

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("not json: %q (%v)", buf.String(), err)
	}
	if line["msg"] != "duel_select" || line["game_id"] != "duel-1" || line["level"] != "debug" {
		t.Fatalf("unexpected entry: %v", line)
	}
}

func TestInitFileCreatesDirectory(t *testing.T) {
	t.Cleanup(func() { Set(nil) })
	path := filepath.Join(t.TempDir(), "nested", "duel.log")
	if err := Init(Options{Level: "info", File: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	L().Info("hello")
	L().Debug("hidden")
	_ = L().Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(raw)
	if !strings.Contains(text, " | INFO | ") || !strings.Contains(text, "hello") || strings.Contains(text, "hidden") {
		t.Fatalf("unexpected log file: %q", text)
	}
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_TO_FILE", "false")
	t.Setenv("LOG_FORMAT", "JSON")
	o := OptionsFromEnv()
	if o.File != "" || o.Format != "JSON" || !o.Console {
		t.Fatalf("unexpected options: %+v", o)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel, "WARN": zapcore.WarnLevel, "warning": zapcore.WarnLevel,
		"error": zapcore.ErrorLevel, "": zapcore.InfoLevel, "bogus": zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetNilRestoresNop(t *testing.T) {
	Set(nil)
	if L() == nil {
		t.Fatalf("logger must never be nil")
	}
}
