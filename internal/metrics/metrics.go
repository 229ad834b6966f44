// Package metrics exposes extraction counters in Prometheus format.
//
// Metrics is an extract.Observer; each run owns its own registry so tests and
// repeated runs in one process never collide on global collectors.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"subextract/internal/extract"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	ProcessedFiles     prometheus.Counter
	ExtractedSubtitles *prometheus.CounterVec
	FailedExtractions  *prometheus.CounterVec
	MissingLanguages   *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
}

// New registers the subextract collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProcessedFiles: factory.NewCounter(prometheus.CounterOpts{
			Name: "subextract_processed_files_total",
			Help: "Total number of video files fully processed",
		}),
		ExtractedSubtitles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "subextract_extracted_subtitles_total",
			Help: "Total number of subtitle files written",
		}, []string{"language"}),
		FailedExtractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "subextract_failed_extractions_total",
			Help: "Total number of subtitle extractions that failed",
		}, []string{"stage"}),
		MissingLanguages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "subextract_missing_languages_total",
			Help: "Total number of requested languages with no matching stream",
		}, []string{"language"}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "subextract_extraction_duration_seconds",
			Help:    "Wall time of one two-pass subtitle extraction",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
		}),
	}
}

// Registry returns the registry backing the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) TaskFinished(_ context.Context, task extract.Task, result extract.TaskResult) {
	if result.Duration > 0 {
		m.ExtractionDuration.Observe(result.Duration.Seconds())
	}
	if result.Success {
		m.ExtractedSubtitles.WithLabelValues(task.Language).Inc()
		return
	}
	m.FailedExtractions.WithLabelValues(result.Stage).Inc()
}

func (m *Metrics) LanguageMissing(_ context.Context, _ string, language string) {
	m.MissingLanguages.WithLabelValues(language).Inc()
}

func (m *Metrics) FileProcessed(context.Context, string, int) {
	m.ProcessedFiles.Inc()
}
