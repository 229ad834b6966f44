package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"subextract/internal/logging"
	"subextract/internal/services"
)

func newTestExecutor(ff *fakeFFmpeg) *Executor {
	e := NewExecutor("ffmpeg", DefaultFormats, logging.NewNop())
	e.WithCommandRunner(ff.run)
	return e
}

func assertAbsent(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be absent, stat err=%v", path, err)
	}
}

func TestExtractOneRunsTwoPasses(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	intermediate, final := OutputPaths(dir, "movie", "eng", "")
	ff := &fakeFFmpeg{}

	if !newTestExecutor(ff).ExtractOne(context.Background(), video, 2, intermediate, final) {
		t.Fatal("expected success")
	}
	if len(ff.calls) != 2 {
		t.Fatalf("expected 2 ffmpeg calls, got %d", len(ff.calls))
	}
	wantFirst := []string{"ffmpeg", "-y", "-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", video, "-map", "0:2", "-f", "ass", intermediate}
	if !reflect.DeepEqual(ff.calls[0], wantFirst) {
		t.Fatalf("unexpected first pass:\n got %v\nwant %v", ff.calls[0], wantFirst)
	}
	wantSecond := []string{"ffmpeg", "-y", "-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", intermediate, "-f", "srt", final}
	if !reflect.DeepEqual(ff.calls[1], wantSecond) {
		t.Fatalf("unexpected second pass:\n got %v\nwant %v", ff.calls[1], wantSecond)
	}
	if _, err := os.Stat(final); err != nil {
		t.Fatalf("expected final subtitle: %v", err)
	}
	assertAbsent(t, intermediate)
}

func TestRunRemovesStaleOutputBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	intermediate, final := OutputPaths(dir, "movie", "eng", "")
	if err := os.WriteFile(final, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	sawStale := false
	ff := &fakeFFmpeg{onInvoke: func([]string) {
		if data, err := os.ReadFile(final); err == nil && string(data) == "stale" {
			sawStale = true
		}
	}}

	result := newTestExecutor(ff).Run(context.Background(), Task{
		VideoFile: filepath.Join(dir, "movie.mkv"), StreamIndex: 2,
		IntermediatePath: intermediate, FinalPath: final,
	})
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if sawStale {
		t.Fatal("stale final subtitle was still present when ffmpeg ran")
	}
	if result.SizeBytes == 0 {
		t.Fatal("expected size of written subtitle")
	}
}

func TestRunFailureLeavesNoArtifacts(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		stage  string
	}{
		{"intermediate pass", "-map", StageIntermediate},
		{"final pass", "-f srt", StageFinal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			intermediate, final := OutputPaths(dir, "movie", "eng", "")
			if err := os.WriteFile(final, []byte("stale"), 0o644); err != nil {
				t.Fatal(err)
			}
			ff := &fakeFFmpeg{failOn: tt.failOn}

			result := newTestExecutor(ff).Run(context.Background(), Task{
				VideoFile: filepath.Join(dir, "movie.mkv"), StreamIndex: 4,
				IntermediatePath: intermediate, FinalPath: final,
			})
			if result.Success {
				t.Fatal("expected failure")
			}
			if result.Stage != tt.stage {
				t.Fatalf("expected stage %q, got %q", tt.stage, result.Stage)
			}
			if !errors.Is(result.Err, services.ErrExternalTool) {
				t.Fatalf("expected external tool error, got %v", result.Err)
			}
			assertAbsent(t, intermediate)
			assertAbsent(t, final)
		})
	}
}

func TestRunReportsMissingOutput(t *testing.T) {
	dir := t.TempDir()
	intermediate, final := OutputPaths(dir, "movie", "eng", "")
	e := NewExecutor("ffmpeg", DefaultFormats, logging.NewNop())
	e.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		if args[len(args)-1] == intermediate {
			return nil, os.WriteFile(intermediate, []byte("[Script Info]"), 0o644)
		}
		return nil, nil
	})

	result := e.Run(context.Background(), Task{VideoFile: "movie.mkv", IntermediatePath: intermediate, FinalPath: final})
	if result.Success || result.Stage != StageFinal {
		t.Fatalf("expected final stage failure, got %+v", result)
	}
	assertAbsent(t, intermediate)
}

func TestRunCancelledReportsContextError(t *testing.T) {
	dir := t.TempDir()
	intermediate, final := OutputPaths(dir, "movie", "eng", "")
	ctx, cancel := context.WithCancel(context.Background())
	e := NewExecutor("ffmpeg", DefaultFormats, logging.NewNop())
	e.WithCommandRunner(func(ctx context.Context, _ string, args ...string) ([]byte, error) {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		cancel()
		return nil, ctx.Err()
	})

	result := e.Run(ctx, Task{VideoFile: "movie.mkv", IntermediatePath: intermediate, FinalPath: final})
	if result.Success {
		t.Fatal("expected failure on cancellation")
	}
	if !errors.Is(result.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", result.Err)
	}
	assertAbsent(t, intermediate)
}

func TestRunKeepsDashLeadingOutputsFromParsingAsOptions(t *testing.T) {
	intermediate, final := OutputPaths(".", "-x", "eng", "")
	if intermediate != "-x_eng.ass" || final != "-x_eng.srt" {
		t.Fatalf("unexpected paths %q %q", intermediate, final)
	}
	var outputs []string
	e := NewExecutor("ffmpeg", DefaultFormats, logging.NewNop())
	e.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		outputs = append(outputs, args[len(args)-1])
		return nil, errors.New("stop")
	})

	e.Run(context.Background(), Task{VideoFile: "-x.mkv", IntermediatePath: intermediate, FinalPath: final})
	if len(outputs) != 1 || outputs[0] != "./-x_eng.ass" {
		t.Fatalf("outputs = %v", outputs)
	}
	if got := outputArg("/abs/-x_eng.srt"); got != "/abs/-x_eng.srt" {
		t.Fatalf("absolute path rewritten: %q", got)
	}
	if got := outputArg(final); got != "./-x_eng.srt" {
		t.Fatalf("final output = %q", got)
	}
}

func TestDiagnosticTruncatesLongOutput(t *testing.T) {
	long := make([]byte, maxDiagnosticBytes*2)
	for i := range long {
		long[i] = 'x'
	}
	got := diagnostic(long)
	if len(got) != maxDiagnosticBytes+3 {
		t.Fatalf("expected truncated diagnostic, got %d bytes", len(got))
	}
	if diagnostic([]byte("  \n")) != "" {
		t.Fatal("expected empty diagnostic for blank output")
	}
}
