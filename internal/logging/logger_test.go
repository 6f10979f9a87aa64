package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar)).With(String(FieldComponent, "pipeline"))

	logger.Info("chunk plan ready", Int("chunks", 3), Float64("duration", 1500), String("title", "Day One"))

	line := strings.TrimSpace(buf.String())
	if !strings.Contains(line, " INFO pipeline: chunk plan ready") {
		t.Errorf("unexpected line %q", line)
	}
	if !strings.Contains(line, "chunks=3") || !strings.Contains(line, "duration=1500") {
		t.Errorf("attrs not rendered: %q", line)
	}
	if !strings.Contains(line, `title="Day One"`) {
		t.Errorf("values with spaces must be quoted: %q", line)
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("dropped")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestJSONHandlerFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, levelVar))

	logger.Error("job failed", String("job_id", "abc"), Duration("elapsed", 2*time.Second))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if payload["level"] != "error" || payload["msg"] != "job failed" {
		t.Errorf("unexpected payload %v", payload)
	}
	if payload["job_id"] != "abc" {
		t.Errorf("missing attrs in %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Errorf("missing ts in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
