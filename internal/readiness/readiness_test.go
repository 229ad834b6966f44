package readiness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"subextract/internal/config"
	"subextract/internal/logging"
	"subextract/internal/services"
)

// scriptedStrategy returns a fixed sequence of readiness answers.
type scriptedStrategy struct {
	answers []bool
	calls   int
	resets  int
}

func (s *scriptedStrategy) Name() string { return "scripted" }

func (s *scriptedStrategy) Reset() { s.resets++ }

func (s *scriptedStrategy) Check(string) (bool, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.answers) {
		return false, nil
	}
	return s.answers[idx], nil
}

func instantTimers(d *Detector) {
	d.newTimer = func(time.Duration) (<-chan time.Time, func() bool) {
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch, func() bool { return true }
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestWaitUntilReadyPollsUntilStrategyAgrees(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, "data")
	strategy := &scriptedStrategy{answers: []bool{false, false, false, true}}
	d := New(strategy, time.Second, logging.NewNop())
	instantTimers(d)

	if err := d.WaitUntilReady(context.Background(), path); err != nil {
		t.Fatalf("WaitUntilReady returned error: %v", err)
	}
	if strategy.calls != 4 {
		t.Fatalf("expected 4 polls, got %d", strategy.calls)
	}
	if strategy.resets != 1 {
		t.Fatalf("expected strategy reset once, got %d", strategy.resets)
	}
}

func TestMTimeStrategyNeedsTwoEqualReadings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.mkv")
	writeFile(t, path, "a")
	s := &MTimeStrategy{}

	if ready, err := s.Check(path); err != nil || ready {
		t.Fatalf("first reading must not be ready: %v %v", ready, err)
	}
	if ready, err := s.Check(path); err != nil || !ready {
		t.Fatalf("second equal reading must be ready: %v %v", ready, err)
	}

	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if ready, _ := s.Check(path); ready {
		t.Fatal("changed mtime must reset stability")
	}
	writeFile(t, path, "abc")
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if ready, _ := s.Check(path); ready {
		t.Fatal("changed size with equal mtime must not be ready")
	}

	s.Reset()
	if ready, _ := s.Check(path); ready {
		t.Fatal("reset strategy must need a fresh baseline")
	}
}

func TestWaitUntilReadyNeverReturnsDuringSlowWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, "")
	var writeDone atomic.Int64

	go func() {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		for i := 0; i < 30; i++ {
			_, _ = f.Write([]byte("chunk"))
			time.Sleep(10 * time.Millisecond)
		}
		writeDone.Store(time.Now().UnixNano())
	}()

	d := New(&MTimeStrategy{}, 80*time.Millisecond, logging.NewNop())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.WaitUntilReady(ctx, path); err != nil {
		t.Fatalf("WaitUntilReady returned error: %v", err)
	}
	readyAt := time.Now().UnixNano()
	done := writeDone.Load()
	if done == 0 || readyAt < done {
		t.Fatalf("detector declared the file ready before the write finished")
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() != 150 {
		t.Fatalf("expected complete file, size=%v err=%v", info, err)
	}
}

func TestWaitUntilReadyHonoursCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	writeFile(t, path, "data")
	d := New(&scriptedStrategy{}, time.Hour, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.WaitUntilReady(ctx, path) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitUntilReady did not return after cancellation")
	}
}

func TestWaitUntilReadyReportsVanishedFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.mkv")
	for _, strategy := range []Strategy{&MTimeStrategy{}, RenameStrategy{}} {
		d := New(strategy, time.Millisecond, logging.NewNop())
		err := d.WaitUntilReady(context.Background(), missing)
		if !errors.Is(err, ErrVanished) {
			t.Fatalf("%s: expected ErrVanished, got %v", strategy.Name(), err)
		}
	}
}

func TestRenameStrategyReadyForIdleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.avi")
	writeFile(t, path, "data")
	d := New(RenameStrategy{}, time.Hour, logging.NewNop())
	if err := d.WaitUntilReady(context.Background(), path); err != nil {
		t.Fatalf("WaitUntilReady returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("rename probe must leave the file in place: %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Watch.ReadinessStrategy = config.ReadinessRename
	cfg.Watch.PollIntervalMillis = 250
	d, err := NewFromConfig(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if d.Strategy() != "rename" || d.interval != 250*time.Millisecond {
		t.Fatalf("unexpected detector %s %s", d.Strategy(), d.interval)
	}

	cfg.Watch.ReadinessStrategy = "lsof"
	if _, err := NewFromConfig(&cfg, logging.NewNop()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
