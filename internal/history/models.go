package history

import "time"

// Status describes how one extraction attempt ended.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusFailed    Status = "failed"
	StatusMissing   Status = "missing"
)

// Record is one row of the extraction ledger. StreamIndex is -1 when no
// stream was involved (a missing language).
type Record struct {
	ID          int64         `json:"id"`
	RunID       string        `json:"run_id"`
	VideoFile   string        `json:"video_file"`
	Language    string        `json:"language"`
	StreamIndex int           `json:"stream_index"`
	OutputPath  string        `json:"output_path,omitempty"`
	Status      Status        `json:"status"`
	Stage       string        `json:"stage,omitempty"`
	Error       string        `json:"error,omitempty"`
	SizeBytes   int64         `json:"size_bytes"`
	Duration    time.Duration `json:"duration_ns"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Run is one process invocation.
type Run struct {
	ID                 string     `json:"id"`
	Mode               string     `json:"mode"`
	Target             string     `json:"target,omitempty"`
	StartedAt          time.Time  `json:"started_at"`
	FinishedAt         *time.Time `json:"finished_at,omitempty"`
	ProcessedFiles     int        `json:"processed_files"`
	ExtractedSubtitles int        `json:"extracted_subtitles"`
}
