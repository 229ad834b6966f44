package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"subextract/internal/fileutil"
	"subextract/internal/logging"
	"subextract/internal/services"
)

// commandRunner executes a command and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Stage names reported in TaskResult.Stage.
const (
	StagePrepare      = "prepare"
	StageIntermediate = "intermediate"
	StageFinal        = "final"
)

// maxDiagnosticBytes caps how much ffmpeg output ends up in a log line.
const maxDiagnosticBytes = 4096

// Formats names the ffmpeg muxers used for the two conversion passes.
type Formats struct {
	Intermediate string
	Final        string
}

// DefaultFormats converts through ASS into SubRip.
var DefaultFormats = Formats{Intermediate: "ass", Final: "srt"}

// Executor drives ffmpeg through the two-pass conversion of one stream.
type Executor struct {
	binary  string
	formats Formats
	logger  *slog.Logger
	run     commandRunner
}

// NewExecutor constructs an Executor for the given ffmpeg binary and formats.
func NewExecutor(binary string, formats Formats, logger *slog.Logger) *Executor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	if formats.Intermediate == "" {
		formats.Intermediate = DefaultFormats.Intermediate
	}
	if formats.Final == "" {
		formats.Final = DefaultFormats.Final
	}
	return &Executor{
		binary:  binary,
		formats: formats,
		logger:  logging.NewComponentLogger(logger, "executor"),
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (e *Executor) WithCommandRunner(r commandRunner) {
	if e != nil && r != nil {
		e.run = r
	}
}

// ExtractOne converts streamIndex of videoFile into finalPath via
// intermediatePath and reports whether it succeeded.
func (e *Executor) ExtractOne(ctx context.Context, videoFile string, streamIndex int, intermediatePath, finalPath string) bool {
	return e.Run(ctx, Task{
		VideoFile:        videoFile,
		StreamIndex:      streamIndex,
		IntermediatePath: intermediatePath,
		FinalPath:        finalPath,
	}).Success
}

// Run executes task. A stale final file is removed first, a failed final
// pass leaves no final file, and the intermediate file is removed on every
// return path. Failures are logged with
// ffmpeg's diagnostic output and returned in the result, never panicked.
func (e *Executor) Run(ctx context.Context, task Task) (result TaskResult) {
	start := time.Now()
	logger := logging.WithContext(ctx, e.logger).With(
		logging.Int(logging.FieldStreamIndex, task.StreamIndex),
		logging.String("final_path", task.FinalPath),
	)
	defer func() {
		result.Duration = time.Since(start)
	}()
	defer e.removeIntermediate(logger, task.IntermediatePath)

	if err := fileutil.RemoveIfExists(task.FinalPath); err != nil {
		return e.fail(ctx, logger, StagePrepare, nil,
			services.Wrap(services.ErrValidation, "executor", StagePrepare, "remove existing subtitle", err))
	}
	if err := fileutil.RemoveIfExists(task.IntermediatePath); err != nil {
		return e.fail(ctx, logger, StagePrepare, nil,
			services.Wrap(services.ErrValidation, "executor", StagePrepare, "remove stale intermediate", err))
	}

	if out, err := e.run(ctx, e.binary, e.intermediateArgs(task)...); err != nil {
		return e.fail(ctx, logger, StageIntermediate, out,
			services.Wrap(services.ErrExternalTool, "executor", StageIntermediate, "ffmpeg "+e.formats.Intermediate+" pass failed", err))
	}
	if out, err := e.run(ctx, e.binary, e.finalArgs(task)...); err != nil {
		e.removePartial(logger, task.FinalPath)
		return e.fail(ctx, logger, StageFinal, out,
			services.Wrap(services.ErrExternalTool, "executor", StageFinal, "ffmpeg "+e.formats.Final+" pass failed", err))
	}

	info, err := os.Stat(task.FinalPath)
	if err != nil {
		return e.fail(ctx, logger, StageFinal, nil,
			services.Wrap(services.ErrExternalTool, "executor", StageFinal, "ffmpeg reported success but produced no file", err))
	}

	logger.Info("subtitle extracted",
		logging.Int64("size_bytes", info.Size()),
		logging.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		logging.String(logging.FieldEventType, "subtitle_extracted"),
	)
	return TaskResult{Success: true, SizeBytes: info.Size()}
}

func (e *Executor) intermediateArgs(task Task) []string {
	return []string{
		"-y", "-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", task.VideoFile,
		"-map", "0:" + strconv.Itoa(task.StreamIndex),
		"-f", e.formats.Intermediate,
		outputArg(task.IntermediatePath),
	}
}

func (e *Executor) finalArgs(task Task) []string {
	return []string{
		"-y", "-nostdin", "-hide_banner", "-loglevel", "error",
		"-i", task.IntermediatePath,
		"-f", e.formats.Final,
		outputArg(task.FinalPath),
	}
}

// outputArg keeps ffmpeg from reading a relative output such as
// "-x_eng.srt" as an option.
func outputArg(path string) string {
	if strings.HasPrefix(path, "-") {
		return "." + string(filepath.Separator) + path
	}
	return path
}

func (e *Executor) fail(ctx context.Context, logger *slog.Logger, stage string, output []byte, err error) TaskResult {
	if ctx.Err() != nil {
		logger.Info("subtitle extraction interrupted",
			logging.String("stage", stage),
			logging.String(logging.FieldEventType, "extraction_interrupted"),
		)
		return TaskResult{Stage: stage, Err: errors.Join(err, ctx.Err())}
	}
	attrs := []logging.Attr{
		logging.String("stage", stage),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the ffmpeg output; image-based subtitles (PGS, VobSub) cannot be converted to text"),
		logging.String(logging.FieldImpact, "this subtitle stream was skipped"),
	}
	if diag := diagnostic(output); diag != "" {
		attrs = append(attrs, logging.String("ffmpeg_output", diag))
	}
	logging.WarnWithContext(logger, "subtitle extraction failed", "extraction_failed", attrs...)
	return TaskResult{Stage: stage, Err: err}
}

// removePartial drops whatever a failed final pass left at path.
func (e *Executor) removePartial(logger *slog.Logger, path string) {
	if err := fileutil.RemoveIfExists(path); err != nil {
		logger.Debug("partial subtitle cleanup failed", logging.String("path", path), logging.Error(err))
	}
}

func (e *Executor) removeIntermediate(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := fileutil.RemoveIfExists(path); err != nil {
		logging.WarnWithContext(logger, "intermediate subtitle cleanup failed", "cleanup_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the file manually and check directory permissions"),
			logging.String(logging.FieldImpact, "a temporary subtitle file remains on disk"),
		)
	}
}

func diagnostic(output []byte) string {
	text := strings.TrimSpace(string(output))
	if len(text) > maxDiagnosticBytes {
		text = fmt.Sprintf("...%s", text[len(text)-maxDiagnosticBytes:])
	}
	return text
}
