package logging_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subextract/internal/config"
	"subextract/internal/logging"
	"subextract/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	component := logging.NewComponentLogger(logger, "executor")
	component.Info("subtitle extracted",
		logging.String(logging.FieldLanguage, "eng"),
		logging.Int64("size_bytes", 2048),
		logging.String(logging.FieldEventType, "subtitle_extracted"),
	)

	out := readLog(t, logPath)
	if !strings.Contains(out, "[executor] subtitle extracted") {
		t.Fatalf("expected component header, got %q", out)
	}
	if !strings.Contains(out, "    - language: eng") {
		t.Fatalf("expected indented language field, got %q", out)
	}
	if !strings.Contains(out, "size_bytes: 2.0 KiB") {
		t.Fatalf("expected humanized byte count, got %q", out)
	}
	if strings.Contains(out, "event_type") {
		t.Fatalf("expected event_type hidden at info level, got %q", out)
	}
	if strings.Contains(out, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", out)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Debug("probe output", logging.String(logging.FieldEventType, "probe_output"))

	out := readLog(t, logPath)
	if !strings.Contains(out, "logger_test.go:") {
		t.Fatalf("expected caller in debug logs, got %q", out)
	}
	if !strings.Contains(out, "event_type: probe_output") {
		t.Fatalf("expected event_type visible at debug level, got %q", out)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("no subtitles", logging.String(logging.FieldLanguage, "fra"))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, logPath))), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["msg"] != "no subtitles" || payload["level"] != "warn" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if _, err := time.Parse(time.RFC3339, payload["ts"].(string)); err != nil {
		t.Fatalf("expected RFC3339 ts, got %v", payload["ts"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigWritesJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "info"
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")

	logger, err := logging.NewFromConfig(&cfg, logPath)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("watch started", logging.String("directory", "/media/in"))

	out := readLog(t, logPath)
	if !strings.Contains(out, `"msg":"watch started"`) {
		t.Fatalf("expected JSON line in log file, got %q", out)
	}
}

func TestWithContextAddsRunAndVideoFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ctx.log")
	base, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithVideoFile(ctx, "/media/movie.mkv")

	logging.WithContext(ctx, base).Info("processing")

	out := readLog(t, logPath)
	for _, want := range []string{`"run_id":"run-1"`, `"video_file":"/media/movie.mkv"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "language missing", "language_missing",
		logging.String(logging.FieldImpact, "no subtitle written for fra"),
	)

	out := readLog(t, logPath)
	for _, want := range []string{`"event_type":"language_missing"`, `"error_hint":"check logs for details"`, `"impact":"no subtitle written for fra"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
}

func TestNilLoggersAreSafe(t *testing.T) {
	logging.WarnWithContext(nil, "ignored", "noop")
	logging.ErrorWithContext(nil, "ignored", "noop")
	logging.NewComponentLogger(nil, "watch").Info("discarded")
	logging.WithContext(context.Background(), nil).Info("discarded")
}

func TestCleanupOldRunLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "subextract-old.log")
	current := filepath.Join(dir, "subextract-current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		stale := time.Now().AddDate(0, 0, -10)
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.CleanupOldRunLogs(logging.NewNop(), dir, "subextract-*.log", current, 5)
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
	if got := logging.CleanupOldRunLogs(nil, dir, "subextract-*.log", current, 0); got != 0 {
		t.Fatalf("zero retention should not prune, removed %d", got)
	}
}
