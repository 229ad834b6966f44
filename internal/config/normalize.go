package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeExtraction(); err != nil {
		return err
	}
	c.normalizeWatch()
	c.Metrics.Bind = strings.TrimSpace(c.Metrics.Bind)
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeExtraction() error {
	c.Extraction.Languages = NormalizeLanguages(c.Extraction.Languages)
	if len(c.Extraction.Languages) == 0 {
		c.Extraction.Languages = DefaultLanguages()
	}
	if strings.TrimSpace(c.Extraction.OutputDir) != "" {
		var err error
		if c.Extraction.OutputDir, err = expandPath(strings.TrimSpace(c.Extraction.OutputDir)); err != nil {
			return fmt.Errorf("extraction.output_dir: %w", err)
		}
	} else {
		c.Extraction.OutputDir = ""
	}
	c.Extraction.FFmpegBinary = strings.TrimSpace(c.Extraction.FFmpegBinary)
	if c.Extraction.FFmpegBinary == "" {
		c.Extraction.FFmpegBinary = defaultFFmpegBinary
	}
	c.Extraction.FFprobeBinary = strings.TrimSpace(c.Extraction.FFprobeBinary)
	if c.Extraction.FFprobeBinary == "" {
		c.Extraction.FFprobeBinary = defaultFFprobeBinary
	}
	c.Extraction.IntermediateFormat = strings.ToLower(strings.TrimSpace(c.Extraction.IntermediateFormat))
	if c.Extraction.IntermediateFormat == "" {
		c.Extraction.IntermediateFormat = defaultIntermediateFormat
	}
	c.Extraction.FinalFormat = strings.ToLower(strings.TrimSpace(c.Extraction.FinalFormat))
	if c.Extraction.FinalFormat == "" {
		c.Extraction.FinalFormat = defaultFinalFormat
	}
	return nil
}

func (c *Config) normalizeWatch() {
	exts := make([]string, 0, len(c.Watch.Extensions))
	for _, ext := range c.Watch.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = DefaultExtensions()
	}
	c.Watch.Extensions = exts
	c.Watch.ReadinessStrategy = strings.ToLower(strings.TrimSpace(c.Watch.ReadinessStrategy))
	if c.Watch.ReadinessStrategy == "" {
		c.Watch.ReadinessStrategy = defaultReadinessStrategy
	}
	if c.Watch.PollIntervalMillis == 0 {
		c.Watch.PollIntervalMillis = defaultPollIntervalMillis
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

// NormalizeLanguages trims codes and drops blanks while keeping caller order.
// Case is preserved: stream language tags are compared exactly.
func NormalizeLanguages(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		for _, part := range strings.Split(code, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
