package readiness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"subextract/internal/config"
	"subextract/internal/logging"
	"subextract/internal/services"
)

// ErrVanished reports that the file disappeared while waiting for it.
var ErrVanished = errors.New("file vanished before becoming ready")

// Strategy inspects a file once per poll. Check returns true when the file
// is ready. Implementations may keep state between calls and are reset by
// the Detector before each wait.
type Strategy interface {
	Name() string
	Reset()
	Check(path string) (bool, error)
}

// Detector blocks until a file is ready.
type Detector struct {
	strategy Strategy
	interval time.Duration
	logger   *slog.Logger
	newTimer func(d time.Duration) (<-chan time.Time, func() bool)
}

// New constructs a Detector. A non-positive interval falls back to one second.
func New(strategy Strategy, interval time.Duration, logger *slog.Logger) *Detector {
	if interval <= 0 {
		interval = time.Second
	}
	if strategy == nil {
		strategy = &MTimeStrategy{}
	}
	return &Detector{
		strategy: strategy,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "readiness"),
		newTimer: func(d time.Duration) (<-chan time.Time, func() bool) {
			t := time.NewTimer(d)
			return t.C, t.Stop
		},
	}
}

// NewFromConfig picks the strategy and interval configured under [watch].
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Detector, error) {
	strategy, err := StrategyByName(cfg.Watch.ReadinessStrategy)
	if err != nil {
		return nil, err
	}
	return New(strategy, cfg.PollInterval(), logger), nil
}

// StrategyByName maps a configured strategy name to a fresh Strategy.
func StrategyByName(name string) (Strategy, error) {
	switch name {
	case "", config.ReadinessMTime:
		return &MTimeStrategy{}, nil
	case config.ReadinessRename:
		return RenameStrategy{}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "readiness", "strategy", fmt.Sprintf("unknown readiness strategy %q", name), nil)
	}
}

// Strategy returns the strategy name in use.
func (d *Detector) Strategy() string {
	return d.strategy.Name()
}

// WaitUntilReady polls path until the strategy reports it ready. It returns
// ctx.Err() on cancellation and ErrVanished when the file disappears.
// Other errors from the strategy are logged and treated as "not ready yet".
func (d *Detector) WaitUntilReady(ctx context.Context, path string) error {
	logger := logging.WithContext(ctx, d.logger).With(logging.String("path", path))
	d.strategy.Reset()
	start := time.Now()
	polls := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		polls++
		ready, err := d.strategy.Check(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("%w: %s", ErrVanished, path)
		case err != nil:
			logger.Debug("readiness check failed; retrying", logging.Error(err))
		case ready:
			attrs := []logging.Attr{
				logging.String("strategy", d.strategy.Name()),
				logging.Int("polls", polls),
				logging.Duration("waited", time.Since(start).Round(time.Millisecond)),
				logging.String(logging.FieldEventType, "file_ready"),
			}
			if info, statErr := os.Stat(path); statErr == nil {
				attrs = append(attrs, logging.Int64("size_bytes", info.Size()))
			}
			logger.Info("file ready", logging.Args(attrs...)...)
			return nil
		default:
			if polls == 2 {
				logger.Info("file still being written; waiting", logging.String("strategy", d.strategy.Name()))
			}
		}

		timer, stop := d.newTimer(d.interval)
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case <-timer:
		}
	}
}
