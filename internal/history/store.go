package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"subextract/internal/accounting"
	"subextract/internal/config"
)

// Store manages the extraction ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond

	// Fixed-width so that text comparison in ORDER BY matches time order.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the ledger at cfg.HistoryPath().
func Open(cfg *config.Config) (*Store, error) {
	return OpenPath(cfg.HistoryPath())
}

// OpenPath initializes or connects to the ledger at path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of a run. target is the watched directory or
// empty for batch runs.
func (s *Store) BeginRun(ctx context.Context, runID, mode, target string) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("begin run: empty run id")
	}
	return s.exec(ctx,
		"INSERT INTO runs (id, mode, target, started_at) VALUES (?, ?, ?, ?)",
		runID, mode, target, s.now().UTC().Format(timeLayout))
}

// FinishRun stores the final counters of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, counters accounting.RunCounters) error {
	return s.exec(ctx,
		"UPDATE runs SET finished_at = ?, processed_files = ?, extracted_subtitles = ? WHERE id = ?",
		s.now().UTC().Format(timeLayout), counters.ProcessedFiles, counters.ExtractedSubtitles, runID)
}

// Record appends one extraction outcome. CreatedAt defaults to now.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	var streamIndex any
	if rec.StreamIndex >= 0 {
		streamIndex = rec.StreamIndex
	}
	return s.exec(ctx,
		`INSERT INTO extractions
			(run_id, video_file, language, stream_index, output_path, status, stage, error, size_bytes, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.VideoFile, rec.Language, streamIndex, rec.OutputPath, string(rec.Status),
		rec.Stage, rec.Error, rec.SizeBytes, rec.Duration.Milliseconds(), rec.CreatedAt.UTC().Format(timeLayout))
}

// List returns up to limit extraction records, newest first. A non-positive
// limit returns every record.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT id, run_id, video_file, language, stream_index, output_path, status, stage, error,
		size_bytes, duration_ms, created_at FROM extractions ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			streamIndex sql.NullInt64
			status      string
			durationMS  int64
			createdAt   string
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.VideoFile, &rec.Language, &streamIndex, &rec.OutputPath,
			&status, &rec.Stage, &rec.Error, &rec.SizeBytes, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		rec.StreamIndex = -1
		if streamIndex.Valid {
			rec.StreamIndex = int(streamIndex.Int64)
		}
		rec.Status = Status(status)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Runs returns up to limit runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, mode, target, started_at, finished_at, processed_files, extracted_subtitles
		FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Mode, &run.Target, &startedAt, &finishedAt,
			&run.ProcessedFiles, &run.ExtractedSubtitles); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(startedAt)
		if finishedAt.Valid {
			ts := parseTime(finishedAt.String)
			run.FinishedAt = &ts
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func parseTime(value string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
