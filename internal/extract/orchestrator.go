package extract

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"subextract/internal/config"
	"subextract/internal/fileutil"
	"subextract/internal/language"
	"subextract/internal/logging"
	"subextract/internal/services"
)

// StreamSelector resolves stream indices for one language of a video.
type StreamSelector interface {
	SelectStreams(ctx context.Context, videoFile, lang string) []int
}

// TaskRunner executes one extraction task.
type TaskRunner interface {
	Run(ctx context.Context, task Task) TaskResult
}

// Orchestrator processes every requested language of one video file.
type Orchestrator struct {
	selector StreamSelector
	runner   TaskRunner
	naming   Naming
	observer Observer
	logger   *slog.Logger
}

// NewOrchestrator wires a selector and runner together. A nil observer is allowed.
func NewOrchestrator(selector StreamSelector, runner TaskRunner, naming Naming, observer Observer, logger *slog.Logger) *Orchestrator {
	if naming.IntermediateExt == "" || naming.FinalExt == "" {
		naming = DefaultNaming
	}
	if observer == nil {
		observer = Observers(nil)
	}
	return &Orchestrator{
		selector: selector,
		runner:   runner,
		naming:   naming,
		observer: observer,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
	}
}

// NewFromConfig builds the ffprobe selector, ffmpeg executor, and
// orchestrator described by cfg.
func NewFromConfig(cfg *config.Config, observer Observer, logger *slog.Logger) *Orchestrator {
	intermediateExt, _ := config.SubtitleFormatExtension(cfg.Extraction.IntermediateFormat)
	finalExt, _ := config.SubtitleFormatExtension(cfg.Extraction.FinalFormat)
	selector := NewSelector(cfg.FFprobeBinary(), logger)
	executor := NewExecutor(cfg.FFmpegBinary(), Formats{
		Intermediate: cfg.Extraction.IntermediateFormat,
		Final:        cfg.Extraction.FinalFormat,
	}, logger)
	return NewOrchestrator(selector, executor, Naming{IntermediateExt: intermediateExt, FinalExt: finalExt}, observer, logger)
}

// ProcessFile extracts every stream matching languages from videoFile and
// returns the number of subtitles written. outputDir defaults to the video's
// own directory. A missing video yields services.ErrNotFound; cancellation
// stops before the next task and returns the count so far with ctx.Err().
func (o *Orchestrator) ProcessFile(ctx context.Context, videoFile, outputDir string, languages []string) (int, error) {
	ctx = services.WithVideoFile(ctx, videoFile)
	logger := logging.WithContext(ctx, o.logger)

	if err := checkVideo(videoFile); err != nil {
		return 0, err
	}
	if outputDir == "" {
		outputDir = filepath.Dir(videoFile)
	}
	baseName := fileutil.BaseName(videoFile)

	logger.Info("processing video file",
		logging.Any("languages", languages),
		logging.String("output_dir", outputDir),
		logging.String(logging.FieldEventType, "file_started"),
	)

	extracted := 0
	for _, lang := range languages {
		if err := ctx.Err(); err != nil {
			return extracted, err
		}
		langCtx := services.WithLanguage(ctx, lang)
		indices := o.selector.SelectStreams(langCtx, videoFile, lang)
		if len(indices) == 0 {
			if err := ctx.Err(); err != nil {
				return extracted, err
			}
			logger.Info("no subtitles for language",
				logging.String(logging.FieldLanguage, lang),
				logging.String("language_name", language.DisplayName(lang)),
				logging.String(logging.FieldEventType, "language_missing"),
			)
			o.observer.LanguageMissing(langCtx, videoFile, lang)
			continue
		}

		for ordinal, index := range indices {
			if err := ctx.Err(); err != nil {
				return extracted, err
			}
			suffix := DisambiguationSuffix(ordinal, len(indices))
			intermediate, final := o.naming.Paths(outputDir, baseName, lang, suffix)
			task := Task{
				VideoFile:        videoFile,
				Language:         lang,
				StreamIndex:      index,
				Suffix:           suffix,
				IntermediatePath: intermediate,
				FinalPath:        final,
			}
			result := o.runner.Run(langCtx, task)
			o.observer.TaskFinished(langCtx, task, result)
			if result.Success {
				extracted++
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return extracted, err
	}
	logger.Info("video file processed",
		logging.Int("extracted_subtitles", extracted),
		logging.String(logging.FieldEventType, "file_processed"),
	)
	o.observer.FileProcessed(ctx, videoFile, extracted)
	return extracted, nil
}

func checkVideo(videoFile string) error {
	info, err := os.Stat(videoFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "orchestrator", "stat", "video file does not exist: "+videoFile, nil)
		}
		return services.Wrap(services.ErrValidation, "orchestrator", "stat", "video file is not readable: "+videoFile, err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, "orchestrator", "stat", "video path is a directory: "+videoFile, nil)
	}
	return nil
}
