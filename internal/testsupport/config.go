package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"subextract/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Watch.PollIntervalMillis = 10

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithLanguages overrides the extraction languages on the test config.
func WithLanguages(langs ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.Languages = langs
	}
}

// WithOutputDir points extraction output at a directory under the test root.
func WithOutputDir(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Extraction.OutputDir = filepath.Join(b.baseDir, name)
	}
}

// WithHistoryDisabled turns off the SQLite ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\necho \"$(basename \"$0\") version 6.1-stub\"\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithFakeMediaTools installs shell-script stand-ins for ffmpeg and ffprobe
// and points the config at them. The ffprobe stub prints probeJSON; the
// ffmpeg stub writes a small file at its last argument, which is the output
// path for both conversion stages.
func WithFakeMediaTools(probeJSON string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "tools")
		ffprobe := filepath.Join(binDir, "ffprobe")
		ffmpeg := filepath.Join(binDir, "ffmpeg")
		probeData := filepath.Join(binDir, "probe.json")

		WriteExecutable(b.t, ffprobe, "#!/bin/sh\n"+
			"if [ \"$1\" = \"-version\" ]; then echo 'ffprobe version 6.1-stub'; exit 0; fi\n"+
			"cat '"+probeData+"'\n")
		WriteExecutable(b.t, ffmpeg, "#!/bin/sh\n"+
			"if [ \"$1\" = \"-version\" ]; then echo 'ffmpeg version 6.1-stub'; exit 0; fi\n"+
			"for last; do :; done\n"+
			"printf 'subtitle' > \"$last\"\n")
		if err := os.WriteFile(probeData, []byte(probeJSON), 0o644); err != nil {
			b.t.Fatalf("write probe data: %v", err)
		}
		b.cfg.Extraction.FFprobeBinary = ffprobe
		b.cfg.Extraction.FFmpegBinary = ffmpeg
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
