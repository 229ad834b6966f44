package logging

import (
	"context"
	"log/slog"

	"subextract/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one process invocation.
	FieldRunID = "run_id"
	// FieldVideoFile is the video file currently being processed.
	FieldVideoFile = "video_file"
	// FieldLanguage is the language code being extracted.
	FieldLanguage = "language"
	// FieldStreamIndex is the container-relative subtitle stream index.
	FieldStreamIndex = "stream_index"
	FieldEventType   = "event_type"
	FieldErrorHint   = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if path, ok := services.VideoFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVideoFile, path))
	}
	if lang, ok := services.LanguageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldLanguage, lang))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return logger.With(args...)
}
