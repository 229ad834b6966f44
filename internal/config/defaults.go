package config

const (
	defaultConfigPath          = "~/.config/subextract/config.toml"
	defaultLogDir              = "~/.local/share/subextract/logs"
	defaultStateDir            = "~/.local/share/subextract/state"
	defaultLogRetentionDays    = 30
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultFFmpegBinary        = "ffmpeg"
	defaultFFprobeBinary       = "ffprobe"
	defaultIntermediateFormat  = "ass"
	defaultFinalFormat         = "srt"
	defaultReadinessStrategy   = ReadinessMTime
	defaultPollIntervalMillis  = 1000
	defaultHistoryEnabled      = true
	defaultCaseSensitiveSuffix = false
)

// Readiness strategies accepted by watch.readiness_strategy.
const (
	ReadinessMTime  = "mtime"
	ReadinessRename = "rename"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:   defaultLogDir,
			StateDir: defaultStateDir,
		},
		Extraction: Extraction{
			Languages:          DefaultLanguages(),
			FFmpegBinary:       defaultFFmpegBinary,
			FFprobeBinary:      defaultFFprobeBinary,
			IntermediateFormat: defaultIntermediateFormat,
			FinalFormat:        defaultFinalFormat,
		},
		Watch: Watch{
			Extensions:              DefaultExtensions(),
			CaseSensitiveExtensions: defaultCaseSensitiveSuffix,
			ReadinessStrategy:       defaultReadinessStrategy,
			PollIntervalMillis:      defaultPollIntervalMillis,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

// DefaultLanguages returns the language codes extracted when none are configured.
func DefaultLanguages() []string {
	return []string{"rus", "eng", "zho", "chi"}
}

// DefaultExtensions returns the recognized video container suffixes.
func DefaultExtensions() []string {
	return []string{".mp4", ".mkv", ".avi"}
}
