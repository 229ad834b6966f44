package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const maxLineBytes = 1024 * 1024

// Last returns up to n trailing lines of path and the byte offset where
// following should resume. A missing file yields no lines and offset 0.
func Last(path string, n int) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	ring := make([]string, 0, n)
	start := 0
	for scanner.Scan() {
		if len(ring) < n {
			ring = append(ring, scanner.Text())
			continue
		}
		ring[start] = scanner.Text()
		start = (start + 1) % n
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	end, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	lines := make([]string, 0, len(ring))
	lines = append(lines, ring[start:]...)
	lines = append(lines, ring[:start]...)
	return lines, end, nil
}

// Follow calls emit for every complete line appended to path after offset
// until ctx is cancelled. A truncated file restarts from the beginning.
// Cancellation returns nil.
func Follow(ctx context.Context, path string, offset int64, poll time.Duration, emit func(string)) error {
	if poll <= 0 {
		poll = time.Second
	}
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log file: %w", err)
	}

	var (
		wake   <-chan fsnotify.Event
		failed <-chan error
	)
	if watcher, err := fsnotify.NewWatcher(); err == nil {
		defer watcher.Close()
		if watcher.Add(path) == nil {
			wake, failed = watcher.Events, watcher.Errors
		}
	}
	return follow(ctx, file, offset, poll, wake, failed, emit)
}

// follow is the read loop behind Follow. Watcher errors are drained and
// treated as a wake-up so a stalled watcher never blocks delivery.
func follow(ctx context.Context, file *os.File, offset int64, poll time.Duration, wake <-chan fsnotify.Event, failed <-chan error, emit func(string)) error {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	reader := bufio.NewReaderSize(file, 64*1024)
	var partial strings.Builder
	pos := offset
	for {
		for {
			chunk, err := reader.ReadString('\n')
			pos += int64(len(chunk))
			if err == nil {
				partial.WriteString(strings.TrimSuffix(chunk, "\n"))
				emit(partial.String())
				partial.Reset()
				continue
			}
			partial.WriteString(chunk)
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("read log file: %w", err)
			}
			break
		}

		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-wake:
			if !ok {
				wake = nil
			}
		case _, ok := <-failed:
			if !ok {
				failed = nil
			}
		case <-ticker.C:
		}

		if info, err := file.Stat(); err == nil && info.Size() < pos {
			if _, err := file.Seek(0, io.SeekStart); err != nil {
				return fmt.Errorf("seek log file: %w", err)
			}
			reader.Reset(file)
			partial.Reset()
			pos = 0
		}
	}
}
