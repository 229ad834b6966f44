// Package accounting aggregates run-level counters and renders the summary
// printed when a batch finishes or a watcher shuts down.
package accounting

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RunCounters tracks work done by one process invocation. Values only grow;
// the struct is passed and returned by value along the single processing path.
type RunCounters struct {
	ProcessedFiles     int `json:"processed_files"`
	ExtractedSubtitles int `json:"extracted_subtitles"`
}

// Add returns c increased by processed files and extracted subtitles.
// Negative inputs are ignored so counters never decrease.
func (c RunCounters) Add(processed, extracted int) RunCounters {
	if processed > 0 {
		c.ProcessedFiles += processed
	}
	if extracted > 0 {
		c.ExtractedSubtitles += extracted
	}
	return c
}

// Summary is the human-readable end-of-run report.
type Summary struct {
	Counters RunCounters
	Elapsed  time.Duration
}

// Summarize builds the report for counters.
func Summarize(counters RunCounters) Summary {
	return Summary{Counters: counters}
}

// WithElapsed attaches the run duration to the report.
func (s Summary) WithElapsed(d time.Duration) Summary {
	s.Elapsed = d
	return s
}

// String returns the plain two-line report.
func (s Summary) String() string {
	return fmt.Sprintf("Processed video files: %d\nExtracted subtitle files: %d",
		s.Counters.ProcessedFiles, s.Counters.ExtractedSubtitles)
}

// Render writes the report as a table. Counts are colored when colorize is
// set: green when subtitles were extracted, yellow otherwise.
func (s Summary) Render(w io.Writer, colorize bool) error {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle("Run summary")
	tw.AppendHeader(table.Row{"Metric", "Value"})

	processed := strconv.Itoa(s.Counters.ProcessedFiles)
	extracted := strconv.Itoa(s.Counters.ExtractedSubtitles)
	if colorize {
		color := text.Colors{text.FgGreen}
		if s.Counters.ExtractedSubtitles == 0 {
			color = text.Colors{text.FgYellow}
		}
		processed = color.Sprint(processed)
		extracted = color.Sprint(extracted)
	}
	tw.AppendRow(table.Row{"Processed video files", processed})
	tw.AppendRow(table.Row{"Extracted subtitle files", extracted})
	if s.Elapsed > 0 {
		tw.AppendRow(table.Row{"Elapsed", s.Elapsed.Round(time.Second).String()})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	out := tw.Render()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}
