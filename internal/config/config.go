package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	StateDir string `toml:"state_dir"`
}

// Extraction controls which subtitle streams are pulled and how they are converted.
type Extraction struct {
	Languages          []string `toml:"languages"`
	OutputDir          string   `toml:"output_dir"`
	FFmpegBinary       string   `toml:"ffmpeg_binary"`
	FFprobeBinary      string   `toml:"ffprobe_binary"`
	IntermediateFormat string   `toml:"intermediate_format"`
	FinalFormat        string   `toml:"final_format"`
}

// Watch contains configuration for directory watch mode.
type Watch struct {
	Extensions              []string `toml:"extensions"`
	CaseSensitiveExtensions bool     `toml:"case_sensitive_extensions"`
	ReadinessStrategy       string   `toml:"readiness_strategy"`
	PollIntervalMillis      int      `toml:"poll_interval_ms"`
}

// History controls the SQLite extraction ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Metrics controls the Prometheus endpoint served in watch mode.
type Metrics struct {
	Bind string `toml:"bind"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for subextract.
//
// Configuration sections by subsystem:
//   - Paths: log and state directories
//   - Extraction: languages, output directory, ffmpeg/ffprobe binaries, formats
//   - Watch: recognized extensions and readiness polling
//   - History: SQLite ledger of extraction outcomes
//   - Metrics: optional Prometheus listener
//   - Logging: log format, level, and retention
type Config struct {
	Paths      Paths      `toml:"paths"`
	Extraction Extraction `toml:"extraction"`
	Watch      Watch      `toml:"watch"`
	History    History    `toml:"history"`
	Metrics    Metrics    `toml:"metrics"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("subextract.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. An explicit output
// directory is created too so batch runs can write into a fresh location.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Extraction.OutputDir) != "" {
		if err := os.MkdirAll(c.Extraction.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", c.Extraction.OutputDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for conversion.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

// FFprobeBinary returns the ffprobe executable used for stream discovery.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Extraction.FFprobeBinary); bin != "" {
		return bin
	}
	return defaultFFprobeBinary
}

// HistoryPath returns the SQLite ledger location inside the state directory.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// PollInterval returns the readiness poll interval.
func (c *Config) PollInterval() time.Duration {
	if c.Watch.PollIntervalMillis <= 0 {
		return time.Duration(defaultPollIntervalMillis) * time.Millisecond
	}
	return time.Duration(c.Watch.PollIntervalMillis) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
