package extract

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"

	"subextract/internal/language"
	"subextract/internal/logging"
	"subextract/internal/media/ffprobe"
)

// outputRunner executes a command and returns its stdout.
type outputRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultOutputRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr strings.Builder
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, errors.Join(err, errors.New(strings.TrimSpace(stderr.String())))
	}
	return out, err
}

// Selector resolves subtitle stream indices for a language.
type Selector struct {
	binary string
	logger *slog.Logger
	run    outputRunner
}

// NewSelector constructs a Selector that runs the given ffprobe binary.
func NewSelector(binary string, logger *slog.Logger) *Selector {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Selector{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "selector"),
		run:    defaultOutputRunner,
	}
}

// WithOutputRunner allows injecting a custom command runner for tests.
func (s *Selector) WithOutputRunner(r outputRunner) {
	if s != nil && r != nil {
		s.run = r
	}
}

// SelectStreams returns the container indices of subtitle streams whose
// language tag equals lang exactly, in the order ffprobe reports them.
// Probe failures and malformed output yield an empty list.
func (s *Selector) SelectStreams(ctx context.Context, videoFile, lang string) []int {
	logger := logging.WithContext(ctx, s.logger)
	result, err := s.probe(ctx, videoFile)
	if err != nil {
		if ctx.Err() == nil {
			logging.WarnWithContext(logger, "subtitle probe failed; treating as no subtitles", "probe_failed",
				logging.String(logging.FieldLanguage, lang),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run ffprobe manually on the file to inspect its streams"),
				logging.String(logging.FieldImpact, "no subtitles extracted for this language"),
			)
		}
		return nil
	}

	var indices []int
	for _, stream := range result.Streams {
		if stream.HasLanguage() && stream.Tags.Language == lang {
			indices = append(indices, stream.Index)
		}
	}
	if len(indices) == 0 {
		s.hintSynonyms(logger, result, lang)
	}
	logger.Debug("subtitle streams selected",
		logging.String(logging.FieldLanguage, lang),
		logging.Any("stream_indices", indices),
		logging.Int("subtitle_streams", len(result.Streams)),
	)
	return indices
}

func (s *Selector) probe(ctx context.Context, videoFile string) (ffprobe.Result, error) {
	output, err := s.run(ctx, s.binary, ffprobe.SubtitleArgs(videoFile)...)
	if err != nil {
		return ffprobe.Result{}, err
	}
	return ffprobe.Parse(output)
}

// hintSynonyms points at streams tagged with an equivalent code, since
// matching is exact and "chi" never matches "zho".
func (s *Selector) hintSynonyms(logger *slog.Logger, result ffprobe.Result, lang string) {
	present := result.Languages()
	for _, alt := range language.Synonyms(lang) {
		for _, tag := range present {
			if tag != alt {
				continue
			}
			logger.Info("subtitle stream uses an equivalent language code",
				logging.String(logging.FieldLanguage, lang),
				logging.String("tagged_as", alt),
				logging.String("hint", "add "+alt+" to the language list to extract it"),
				logging.String(logging.FieldEventType, "language_synonym_present"),
			)
			return
		}
	}
}
