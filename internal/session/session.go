package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"subextract/internal/accounting"
	"subextract/internal/config"
	"subextract/internal/deps"
	"subextract/internal/extract"
	"subextract/internal/history"
	"subextract/internal/language"
	"subextract/internal/logging"
	"subextract/internal/metrics"
	"subextract/internal/preflight"
	"subextract/internal/services"
	"subextract/internal/watch"
)

// Mode names how a run discovers video files.
type Mode string

const (
	ModeBatch Mode = "batch"
	ModeWatch Mode = "watch"
)

// Options configures one invocation. Files and WatchDir are mutually
// exclusive; OutputDir and Languages override the configuration when set.
type Options struct {
	Files     []string
	WatchDir  string
	OutputDir string
	Languages []string

	// Summary receives the end-of-run report. Nil discards it.
	Summary  io.Writer
	Colorize bool
}

// Mode reports which mode the options select.
func (o Options) Mode() Mode {
	if strings.TrimSpace(o.WatchDir) != "" {
		return ModeWatch
	}
	return ModeBatch
}

// Result describes a finished invocation.
type Result struct {
	RunID    string
	LogPath  string
	Counters accounting.RunCounters
	Elapsed  time.Duration
}

// Run executes one invocation until the work is done or SIGINT/SIGTERM
// arrives. Setup problems are returned as ErrConfiguration; per-file
// problems are logged and never fail the run.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) (Result, error) {
	if cfg == nil {
		return Result{}, fmt.Errorf("config is required")
	}
	if len(opts.Files) > 0 && opts.Mode() == ModeWatch {
		return Result{}, services.Wrap(services.ErrConfiguration, "session", "select mode", "files and a watch directory are mutually exclusive", nil)
	}
	if len(opts.Files) == 0 && opts.Mode() == ModeBatch {
		return Result{}, services.Wrap(services.ErrConfiguration, "session", "select mode", "no video files given", nil)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "session", "prepare directories", "", err)
	}

	runID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("subextract-%s.log", runID))
	logger, err := logging.NewFromConfig(cfg, logPath)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "session", "init logger", "", err)
	}
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update subextract.log link: %v\n", err)
	}
	logging.CleanupOldRunLogs(logger, cfg.Paths.LogDir, "subextract-*.log", logPath, cfg.Logging.RetentionDays)

	ctx := services.WithRunID(signalCtx, runID)
	runLogger := logging.WithContext(ctx, logger)
	result := Result{RunID: runID, LogPath: logPath}

	languages := opts.Languages
	if len(languages) == 0 {
		languages = cfg.Extraction.Languages
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = cfg.Extraction.OutputDir
	}

	if err := checkSetup(ctx, cfg, opts.WatchDir, outputDir, runLogger); err != nil {
		logging.ErrorWithContext(runLogger, "setup failed", "setup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the reported problem and run again"),
			logging.String(logging.FieldImpact, "nothing was processed"),
		)
		return result, err
	}
	warnUnknownLanguages(runLogger, languages)

	mode := opts.Mode()
	runLogger.Info("subextract run starting",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("mode", string(mode)),
		logging.Any("languages", languages),
		logging.String("output_dir", outputDir),
		logging.String("log_path", logPath),
	)

	observers := extract.Observers{}
	store := openHistory(ctx, cfg, runID, mode, opts.WatchDir, runLogger)
	if store != nil {
		defer store.Close()
		observers = append(observers, history.NewRecorder(store, runID, logger))
	}
	m := metrics.New()
	observers = append(observers, m)
	if mode == ModeWatch {
		if srv := startMetrics(cfg, m, logger); srv != nil {
			defer func() {
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelShutdown()
				_ = srv.Shutdown(shutdownCtx)
			}()
		}
	}

	orchestrator := extract.NewFromConfig(cfg, observers, logger)
	start := time.Now()

	var (
		counters accounting.RunCounters
		runErr   error
	)
	switch mode {
	case ModeWatch:
		controller, err := watch.NewFromConfig(cfg, opts.WatchDir, outputDir, languages, orchestrator, logger)
		if err != nil {
			return result, err
		}
		counters, runErr = controller.Run(ctx)
		if runErr != nil {
			logging.ErrorWithContext(runLogger, "watch failed", "watch_failed",
				logging.Error(runErr),
				logging.String(logging.FieldErrorHint, "check the watch directory and that no other watcher owns it"),
				logging.String(logging.FieldImpact, "watch mode terminated"),
			)
			if !shouldSummarize(counters, runErr) {
				result.Counters = counters
				return result, runErr
			}
		}
	default:
		counters = runBatch(ctx, orchestrator, opts.Files, outputDir, languages, runLogger)
	}

	result.Counters = counters
	result.Elapsed = time.Since(start)
	finish(ctx, store, runID, counters, runLogger)

	summary := accounting.Summarize(counters).WithElapsed(result.Elapsed)
	runLogger.Info("run summary",
		logging.String(logging.FieldEventType, "run_summary"),
		logging.Int("processed_files", counters.ProcessedFiles),
		logging.Int("extracted_subtitles", counters.ExtractedSubtitles),
		logging.Duration("elapsed", result.Elapsed.Round(time.Millisecond)),
	)
	if opts.Summary != nil {
		if err := summary.Render(opts.Summary, opts.Colorize); err != nil {
			runLogger.Debug("render summary failed", logging.Error(err))
		}
	}
	return result, runErr
}

// shouldSummarize reports whether a run ending with err still owes the user a
// summary. Only a setup failure that happened before any work is exempt.
func shouldSummarize(counters accounting.RunCounters, err error) bool {
	if err == nil || !services.IsSetupFailure(err) {
		return true
	}
	return counters != (accounting.RunCounters{})
}

// runBatch processes files in order. Missing or unreadable inputs are
// logged and skipped; cancellation stops before the next file.
func runBatch(ctx context.Context, orchestrator *extract.Orchestrator, files []string, outputDir string, languages []string, logger *slog.Logger) accounting.RunCounters {
	var counters accounting.RunCounters
	for i, file := range files {
		if ctx.Err() != nil {
			logger.Info("batch interrupted", logging.Int("remaining_files", len(files)-i))
			break
		}
		extracted, err := orchestrator.ProcessFile(ctx, file, outputDir, languages)
		switch {
		case err == nil:
			counters = counters.Add(1, extracted)
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			counters = counters.Add(0, extracted)
		default:
			logging.WarnWithContext(logger, "video file skipped", "file_skipped",
				logging.String(logging.FieldVideoFile, file),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the path and file permissions"),
				logging.String(logging.FieldImpact, "no subtitles extracted for this file"),
			)
		}
	}
	return counters
}

func checkSetup(ctx context.Context, cfg *config.Config, watchDir, outputDir string, logger *slog.Logger) error {
	var problems []string
	for _, res := range preflight.Failed(preflight.RunAll(cfg, watchDir, outputDir)) {
		problems = append(problems, fmt.Sprintf("%s: %s", res.Name, res.Detail))
	}
	statuses := preflight.CheckSystemDeps(ctx, cfg)
	for _, status := range statuses {
		logger.Debug("dependency status",
			logging.String("dependency", status.Name),
			logging.Bool("available", status.Available),
			logging.String("path", status.Path),
			logging.String("version", status.Version),
		)
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		problems = append(problems, "missing required tools: "+strings.Join(missing, ", "))
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "session", "preflight", strings.Join(problems, "; "), nil)
}

func warnUnknownLanguages(logger *slog.Logger, languages []string) {
	for _, lang := range languages {
		if language.IsKnown(lang) {
			continue
		}
		logging.WarnWithContext(logger, "unrecognized language code", "language_unknown",
			logging.String(logging.FieldLanguage, lang),
			logging.String(logging.FieldErrorHint, "use ISO 639-2 codes such as eng or rus"),
			logging.String(logging.FieldImpact, "only streams tagged exactly with this code will match"),
		)
	}
}

func openHistory(ctx context.Context, cfg *config.Config, runID string, mode Mode, target string, logger *slog.Logger) *history.Store {
	if !cfg.History.Enabled {
		return nil
	}
	store, err := history.Open(cfg)
	if err == nil {
		err = store.BeginRun(ctx, runID, string(mode), target)
		if err != nil {
			_ = store.Close()
		}
	}
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_unavailable",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete "+cfg.HistoryPath()+" if the schema is outdated"),
			logging.String(logging.FieldImpact, "this run is not recorded in history"),
		)
		return nil
	}
	return store
}

func finish(ctx context.Context, store *history.Store, runID string, counters accounting.RunCounters, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.FinishRun(context.WithoutCancel(ctx), runID, counters); err != nil {
		logger.Debug("record run totals failed", logging.Error(err))
	}
}

func startMetrics(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) *metrics.Server {
	bind := strings.TrimSpace(cfg.Metrics.Bind)
	if bind == "" {
		return nil
	}
	srv, err := metrics.Listen(bind, m, logger)
	if err != nil {
		logging.WarnWithContext(logger, "metrics endpoint unavailable", "metrics_listen_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "choose a free address for metrics.bind"),
			logging.String(logging.FieldImpact, "metrics are not exported for this run"),
		)
		return nil
	}
	srv.Start()
	return srv
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "subextract.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}
