package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	return c.validateLogging()
}

// SubtitleFormatExtension maps an ffmpeg subtitle muxer name to its file extension.
func SubtitleFormatExtension(format string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "ass":
		return "ass", true
	case "ssa":
		return "ssa", true
	case "srt":
		return "srt", true
	case "webvtt":
		return "vtt", true
	default:
		return "", false
	}
}

func (c *Config) validateExtraction() error {
	if len(c.Extraction.Languages) == 0 {
		return errors.New("extraction.languages must list at least one language code")
	}
	for _, code := range c.Extraction.Languages {
		if strings.ContainsAny(code, `/\`) {
			return fmt.Errorf("extraction.languages: %q is not a valid language code", code)
		}
	}
	if _, ok := SubtitleFormatExtension(c.Extraction.IntermediateFormat); !ok {
		return fmt.Errorf("extraction.intermediate_format %q is not supported (use ass, ssa, srt, or webvtt)", c.Extraction.IntermediateFormat)
	}
	if _, ok := SubtitleFormatExtension(c.Extraction.FinalFormat); !ok {
		return fmt.Errorf("extraction.final_format %q is not supported (use ass, ssa, srt, or webvtt)", c.Extraction.FinalFormat)
	}
	if c.Extraction.IntermediateFormat == c.Extraction.FinalFormat {
		return errors.New("extraction.intermediate_format must differ from extraction.final_format")
	}
	return nil
}

func (c *Config) validateWatch() error {
	for _, ext := range c.Watch.Extensions {
		if len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
			return fmt.Errorf("watch.extensions: %q is not a valid suffix", ext)
		}
	}
	switch c.Watch.ReadinessStrategy {
	case ReadinessMTime, ReadinessRename:
	default:
		return fmt.Errorf("watch.readiness_strategy %q is not supported (use %s or %s)", c.Watch.ReadinessStrategy, ReadinessMTime, ReadinessRename)
	}
	if c.Watch.PollIntervalMillis < 0 {
		return errors.New("watch.poll_interval_ms must be positive")
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.Metrics.Bind == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Metrics.Bind); err != nil {
		return fmt.Errorf("metrics.bind %q: %w", c.Metrics.Bind, err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported (use debug, info, warn, or error)", c.Logging.Level)
	}
}
