package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subextract/internal/deps"
	"subextract/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check that ffmpeg and ffprobe are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				location := s.Path
				if !s.Available {
					location = s.Detail
				}
				rows = append(rows, []string{s.Name, yesNo(s.Available), s.Version, location})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, tableView{
				title:   "Dependencies",
				headers: []string{"Dependency", "Available", "Version", "Location"},
				rows:    rows,
			}.render())

			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
