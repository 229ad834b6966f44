package history

import (
	"context"
	"log/slog"

	"subextract/internal/extract"
	"subextract/internal/logging"
)

// Recorder writes pipeline outcomes into a Store for one run.
type Recorder struct {
	store  *Store
	runID  string
	logger *slog.Logger
}

// NewRecorder returns an extract.Observer that records into store under runID.
func NewRecorder(store *Store, runID string, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, runID: runID, logger: logging.NewComponentLogger(logger, "history")}
}

func (r *Recorder) TaskFinished(ctx context.Context, task extract.Task, result extract.TaskResult) {
	rec := Record{
		RunID:       r.runID,
		VideoFile:   task.VideoFile,
		Language:    task.Language,
		StreamIndex: task.StreamIndex,
		OutputPath:  task.FinalPath,
		Status:      StatusExtracted,
		SizeBytes:   result.SizeBytes,
		Duration:    result.Duration,
	}
	if !result.Success {
		rec.Status = StatusFailed
		rec.Stage = result.Stage
		rec.OutputPath = ""
		if result.Err != nil {
			rec.Error = result.Err.Error()
		}
	}
	r.write(ctx, rec)
}

func (r *Recorder) LanguageMissing(ctx context.Context, videoFile, language string) {
	r.write(ctx, Record{
		RunID:       r.runID,
		VideoFile:   videoFile,
		Language:    language,
		StreamIndex: -1,
		Status:      StatusMissing,
	})
}

func (r *Recorder) FileProcessed(context.Context, string, int) {}

func (r *Recorder) write(ctx context.Context, rec Record) {
	if r == nil || r.store == nil {
		return
	}
	// Outcomes of an interrupted task are still worth keeping.
	if err := r.store.Record(context.WithoutCancel(ctx), rec); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
			logging.String(logging.FieldImpact, "extraction continues but this outcome is missing from history"),
		)
	}
}
