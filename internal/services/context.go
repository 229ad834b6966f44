package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	videoFileKey contextKey = "video_file"
	languageKey  contextKey = "language"
)

// WithRunID annotates context with the process-wide run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithVideoFile annotates context with the video file being processed.
func WithVideoFile(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, videoFileKey, path)
}

// VideoFileFromContext returns the video file if present.
func VideoFileFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(videoFileKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithLanguage annotates context with the language code being extracted.
func WithLanguage(ctx context.Context, code string) context.Context {
	if code == "" {
		return ctx
	}
	return context.WithValue(ctx, languageKey, code)
}

// LanguageFromContext returns the language code if present.
func LanguageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(languageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
