package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"subextract/internal/accounting"
	"subextract/internal/config"
	"subextract/internal/fileutil"
	"subextract/internal/logging"
	"subextract/internal/preflight"
	"subextract/internal/readiness"
	"subextract/internal/services"
)

// Dispatcher processes one ready video file and reports how many subtitles
// it extracted.
type Dispatcher interface {
	ProcessFile(ctx context.Context, videoFile, outputDir string, languages []string) (int, error)
}

// Waiter blocks until a file is safe to read.
type Waiter interface {
	WaitUntilReady(ctx context.Context, path string) error
}

// Options describes one watch run.
type Options struct {
	Dir           string
	OutputDir     string
	Languages     []string
	Extensions    []string
	CaseSensitive bool
	// LockDir holds the per-directory lock file. Empty disables locking.
	LockDir string
}

// Controller runs watch mode for a single directory.
type Controller struct {
	opts       Options
	source     Source
	waiter     Waiter
	dispatcher Dispatcher
	logger     *slog.Logger
	state      atomic.Int32

	// stamps of files dispatched during bootstrap, so a create event queued
	// for the same unchanged file is not processed twice.
	bootstrapped map[string]stamp
}

type stamp struct {
	size    int64
	modTime time.Time
}

// NewController wires a controller from its collaborators.
func NewController(opts Options, source Source, waiter Waiter, dispatcher Dispatcher, logger *slog.Logger) *Controller {
	if source == nil {
		source = FSNotifySource{}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = config.DefaultExtensions()
	}
	return &Controller{
		opts:         opts,
		source:       source,
		waiter:       waiter,
		dispatcher:   dispatcher,
		logger:       logging.NewComponentLogger(logger, "watch"),
		bootstrapped: make(map[string]stamp),
	}
}

// NewFromConfig builds a controller that watches dir with the configured
// extensions, readiness strategy and lock directory.
func NewFromConfig(cfg *config.Config, dir, outputDir string, languages []string, dispatcher Dispatcher, logger *slog.Logger) (*Controller, error) {
	waiter, err := readiness.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		languages = cfg.Extraction.Languages
	}
	if outputDir == "" {
		outputDir = cfg.Extraction.OutputDir
	}
	opts := Options{
		Dir:           dir,
		OutputDir:     outputDir,
		Languages:     languages,
		Extensions:    cfg.Watch.Extensions,
		CaseSensitive: cfg.Watch.CaseSensitiveExtensions,
		LockDir:       cfg.Paths.StateDir,
	}
	return NewController(opts, FSNotifySource{}, waiter, dispatcher, logger), nil
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) transition(next State) {
	prev := State(c.state.Swap(int32(next)))
	c.logger.Debug("watch state changed",
		logging.String("from", prev.String()),
		logging.String("to", next.String()),
	)
}

// Run watches the directory until ctx is cancelled. Cancellation is a clean
// shutdown and returns a nil error. Setup failures return ErrConfiguration
// before any file is processed. The counters accumulated so far are
// returned on every path.
func (c *Controller) Run(ctx context.Context) (accounting.RunCounters, error) {
	var counters accounting.RunCounters
	c.transition(StateBootstrapping)
	defer c.transition(StateStopped)

	dir, err := filepath.Abs(c.opts.Dir)
	if err != nil {
		return counters, services.Wrap(services.ErrConfiguration, "watch", "resolve directory", c.opts.Dir, err)
	}
	if res := preflight.CheckDirectoryAccess("Watch directory", dir); !res.Passed {
		return counters, services.Wrap(services.ErrConfiguration, "watch", "check directory", res.Detail, nil)
	}
	if c.opts.LockDir != "" {
		lock, err := acquireLock(LockPath(c.opts.LockDir, dir))
		if err != nil {
			return counters, err
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				c.logger.Debug("release watch lock failed", logging.Error(err))
			}
		}()
	}

	// Subscribe before listing so files created during bootstrap are queued.
	sub, err := c.source.Subscribe(dir)
	if err != nil {
		return counters, services.Wrap(services.ErrConfiguration, "watch", "subscribe", dir, err)
	}
	defer func() {
		c.transition(StateDraining)
		if err := sub.Close(); err != nil {
			c.logger.Debug("close subscription failed", logging.Error(err))
		}
	}()

	c.logger.Info("watching directory",
		logging.String("directory", dir),
		logging.String("output_dir", c.opts.OutputDir),
		logging.Any("languages", c.opts.Languages),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	counters, err = c.bootstrap(ctx, dir, counters)
	if err != nil {
		return counters, err
	}
	if ctx.Err() != nil {
		c.logStopped(counters)
		return counters, nil
	}

	c.transition(StateWatching)
	events := sub.Events()
	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			c.logStopped(counters)
			return counters, nil
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logging.WarnWithContext(c.logger, "filesystem notification error", "watch_notification_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "raise fs.inotify.max_queued_events if events overflow"),
				logging.String(logging.FieldImpact, "some created files may have been missed"),
			)
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					c.logStopped(counters)
					return counters, nil
				}
				return counters, services.Wrap(services.ErrConfiguration, "watch", "subscription", "notification stream closed unexpectedly", nil)
			}
			counters = c.dispatch(ctx, counters, ev)
		}
	}
}

func (c *Controller) bootstrap(ctx context.Context, dir string, counters accounting.RunCounters) (accounting.RunCounters, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return counters, services.Wrap(services.ErrConfiguration, "watch", "list directory", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		path := filepath.Join(dir, entry.Name())
		before := counters
		counters = c.dispatch(ctx, counters, Event{Path: path, IsDir: entry.IsDir()})
		if counters != before {
			if info, err := os.Stat(path); err == nil {
				c.bootstrapped[path] = stamp{size: info.Size(), modTime: info.ModTime()}
			}
		}
	}
	c.logger.Info("existing files processed",
		logging.Int("processed_files", counters.ProcessedFiles),
		logging.Int("extracted_subtitles", counters.ExtractedSubtitles),
	)
	return counters, nil
}

// dispatch handles one Created event and returns the updated counters.
func (c *Controller) dispatch(ctx context.Context, counters accounting.RunCounters, ev Event) accounting.RunCounters {
	if ev.IsDir || !fileutil.HasExtension(ev.Path, c.opts.Extensions, c.opts.CaseSensitive) {
		return counters
	}
	if c.seenInBootstrap(ev.Path) {
		return counters
	}

	fileCtx := services.WithVideoFile(ctx, ev.Path)
	logger := logging.WithContext(fileCtx, c.logger)
	logger.Info("video file detected", logging.String(logging.FieldEventType, "file_detected"))

	if err := c.waiter.WaitUntilReady(fileCtx, ev.Path); err != nil {
		if errors.Is(err, readiness.ErrVanished) {
			logging.WarnWithContext(logger, "file vanished before it was ready", "file_vanished",
				logging.String(logging.FieldErrorHint, "file was moved or deleted while being written"),
				logging.String(logging.FieldImpact, "file skipped"),
			)
		}
		return counters
	}

	extracted, err := c.dispatcher.ProcessFile(fileCtx, ev.Path, c.opts.OutputDir, c.opts.Languages)
	switch {
	case err == nil:
		return counters.Add(1, extracted)
	case ctx.Err() != nil:
		return counters.Add(0, extracted)
	default:
		logging.WarnWithContext(logger, "video file skipped", "file_skipped",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the file is readable"),
			logging.String(logging.FieldImpact, "no subtitles extracted for this file"),
		)
		return counters.Add(0, extracted)
	}
}

// seenInBootstrap consumes a bootstrap stamp when ev refers to the same,
// unchanged file.
func (c *Controller) seenInBootstrap(path string) bool {
	if c.State() != StateWatching {
		return false
	}
	prev, ok := c.bootstrapped[path]
	if !ok {
		return false
	}
	delete(c.bootstrapped, path)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Size() == prev.size && info.ModTime().Equal(prev.modTime)
}

func (c *Controller) logStopped(counters accounting.RunCounters) {
	c.logger.Info("watch stopped",
		logging.Int("processed_files", counters.ProcessedFiles),
		logging.Int("extracted_subtitles", counters.ExtractedSubtitles),
		logging.String(logging.FieldEventType, "watch_stopped"),
	)
}
