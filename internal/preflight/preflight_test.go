package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subextract/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestEnsureOutputDirectoryCreatesMissing(t *testing.T) {
	target := filepath.Join(t.TempDir(), "subs", "eng")
	result := EnsureOutputDirectory(target)
	if !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		t.Fatalf("expected directory created, err=%v", err)
	}
}

func TestRunAllReportsWatchDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	missing := filepath.Join(t.TempDir(), "absent")

	results := RunAll(&cfg, missing, "")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Watch directory" {
		t.Fatalf("expected only the watch directory to fail, got %+v", failed)
	}
}

func TestCheckSystemDepsUsesConfiguredBinaries(t *testing.T) {
	binDir := t.TempDir()
	ffmpeg := filepath.Join(binDir, "ffmpeg-custom")
	if err := os.WriteFile(ffmpeg, []byte("#!/bin/sh\necho 'ffmpeg version 7.1'\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	cfg := config.Default()
	cfg.Extraction.FFmpegBinary = ffmpeg
	cfg.Extraction.FFprobeBinary = filepath.Join(binDir, "missing-ffprobe")

	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available || statuses[0].Version != "7.1" {
		t.Fatalf("expected ffmpeg available with version, got %+v", statuses[0])
	}
	if statuses[1].Available {
		t.Fatalf("expected ffprobe unavailable, got %+v", statuses[1])
	}
}
