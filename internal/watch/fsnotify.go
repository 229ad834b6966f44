package watch

import (
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FSNotifySource subscribes through the operating system's notification API.
type FSNotifySource struct{}

// Subscribe watches dir (non-recursive) for newly created entries.
func (FSNotifySource) Subscribe(dir string) (Subscription, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	sub := &fsnotifySubscription{
		watcher: w,
		events:  make(chan Event, 64),
		errors:  make(chan error, 8),
		done:    make(chan struct{}),
	}
	go sub.loop()
	return sub, nil
}

type fsnotifySubscription struct {
	watcher *fsnotify.Watcher
	events  chan Event
	errors  chan error
	done    chan struct{}
	once    sync.Once
	err     error
}

func (s *fsnotifySubscription) Events() <-chan Event { return s.events }

func (s *fsnotifySubscription) Errors() <-chan error { return s.errors }

func (s *fsnotifySubscription) Close() error {
	s.once.Do(func() {
		close(s.done)
		s.err = s.watcher.Close()
	})
	return s.err
}

func (s *fsnotifySubscription) loop() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			out := Event{Path: ev.Name}
			if info, err := os.Lstat(ev.Name); err == nil {
				out.IsDir = info.IsDir()
			}
			select {
			case s.events <- out:
			case <-s.done:
				return
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			select {
			case s.errors <- err:
			default:
			}
		}
	}
}
