package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"subextract/internal/accounting"
)

type fakeSubscription struct {
	events chan Event
	errs   chan error
	once   sync.Once
	closed chan struct{}
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{
		events: make(chan Event, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (s *fakeSubscription) Events() <-chan Event { return s.events }
func (s *fakeSubscription) Errors() <-chan error { return s.errs }

func (s *fakeSubscription) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func (s *fakeSubscription) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

type fakeSource struct {
	sub *fakeSubscription
	err error
}

func (f *fakeSource) Subscribe(string) (Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

type instantWaiter struct {
	err error
}

func (w instantWaiter) WaitUntilReady(ctx context.Context, _ string) error {
	if w.err != nil {
		return w.err
	}
	return ctx.Err()
}

type fakeDispatcher struct {
	mu        sync.Mutex
	calls     []string
	extracted int
	err       error
	hook      func(ctx context.Context, path string) (int, error)
	seen      chan string
}

func newFakeDispatcher(extracted int) *fakeDispatcher {
	return &fakeDispatcher{extracted: extracted, seen: make(chan string, 16)}
}

func (d *fakeDispatcher) ProcessFile(ctx context.Context, videoFile, _ string, _ []string) (int, error) {
	d.mu.Lock()
	d.calls = append(d.calls, videoFile)
	d.mu.Unlock()
	defer func() { d.seen <- videoFile }()
	if d.hook != nil {
		return d.hook(ctx, videoFile)
	}
	return d.extracted, d.err
}

func (d *fakeDispatcher) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

func (d *fakeDispatcher) waitFor(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-d.seen:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for dispatch %d of %d", i+1, n)
		}
	}
}

type runResult struct {
	counters accounting.RunCounters
	err      error
}

func startController(ctx context.Context, c *Controller) <-chan runResult {
	done := make(chan runResult, 1)
	go func() {
		counters, err := c.Run(ctx)
		done <- runResult{counters: counters, err: err}
	}()
	return done
}

func waitResult(t *testing.T, done <-chan runResult) runResult {
	t.Helper()
	select {
	case res := <-done:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("controller did not stop")
	}
	return runResult{}
}

func waitState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %s, want %s", c.State(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var errBoom = errors.New("boom")
