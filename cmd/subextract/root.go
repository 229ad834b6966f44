package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subextract/internal/config"
	"subextract/internal/session"
)

type runFlags struct {
	watchDir  string
	outputDir string
	languages []string
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var flags runFlags

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:   "subextract [flags] [video files...]",
		Short: "Extract subtitle streams by language",
		Long: "Extract subtitle streams matching the requested languages from video files.\n" +
			"Pass video files to process them once, or --watch a directory to process\n" +
			"new videos as they arrive until interrupted.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && strings.TrimSpace(flags.watchDir) == "" {
				return cmd.Help()
			}
			if len(args) > 0 && strings.TrimSpace(flags.watchDir) != "" {
				return errors.New("video files and --watch are mutually exclusive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.apply(cfg, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			opts.Summary = out
			opts.Colorize = shouldColorize(out)
			_, err = session.Run(cmd.Context(), cfg, opts)
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.watchDir, "watch", "w", "", "Watch a directory for new video files")
	rootCmd.Flags().StringVarP(&flags.outputDir, "output", "o", "", "Write subtitles here instead of next to each video")
	rootCmd.Flags().StringSliceVarP(&flags.languages, "languages", "l", nil, "Language codes to extract, in order; comma-separated or repeated, e.g. -l rus,eng (default from config)")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flags.logFormat, "log-format", "", "Override logging.format (console, json)")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDepsCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}

// apply folds command-line overrides into cfg and returns the session options.
func (f runFlags) apply(cfg *config.Config, files []string) (session.Options, error) {
	if level := strings.TrimSpace(f.logLevel); level != "" {
		cfg.Logging.Level = strings.ToLower(level)
	}
	if format := strings.TrimSpace(f.logFormat); format != "" {
		cfg.Logging.Format = strings.ToLower(format)
	}
	if langs := config.NormalizeLanguages(f.languages); len(langs) > 0 {
		cfg.Extraction.Languages = langs
	}
	if err := cfg.Validate(); err != nil {
		return session.Options{}, err
	}

	opts := session.Options{Files: files, Languages: cfg.Extraction.Languages}
	if dir := strings.TrimSpace(f.watchDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return session.Options{}, fmt.Errorf("resolve watch directory: %w", err)
		}
		opts.WatchDir = expanded
	}
	if dir := strings.TrimSpace(f.outputDir); dir != "" {
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return session.Options{}, fmt.Errorf("resolve output directory: %w", err)
		}
		opts.OutputDir = expanded
	}
	return opts, nil
}
