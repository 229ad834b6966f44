package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"subextract/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded extraction outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.HistoryPath()); os.IsNotExist(err) {
				if asJSON {
					return writeJSON(cmd, []history.Record{})
				}
				fmt.Fprintln(out, "No history recorded yet")
				return nil
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				if records == nil {
					records = []history.Record{}
				}
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "No history recorded yet")
				return nil
			}
			fmt.Fprintln(out, tableView{
				title:   "Extraction history",
				headers: []string{"When", "Video", "Lang", "Stream", "Status", "Output", "Size"},
				aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight},
				rows:    historyRows(records),
			}.render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func historyRows(records []history.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		stream := "-"
		if rec.StreamIndex >= 0 {
			stream = strconv.Itoa(rec.StreamIndex)
		}
		detail := rec.OutputPath
		if rec.Status == history.StatusFailed {
			detail = rec.Stage + ": " + rec.Error
		}
		size := "-"
		if rec.SizeBytes > 0 {
			size = humanize.Bytes(uint64(rec.SizeBytes))
		}
		rows = append(rows, []string{
			rec.CreatedAt.Local().Format(time.DateTime),
			rec.VideoFile,
			rec.Language,
			stream,
			string(rec.Status),
			detail,
			size,
		})
	}
	return rows
}
