package extract

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
)

// fakeFFmpeg emulates ffmpeg by writing the output path (last argument).
// Passes whose input or output contains a failing token return an error.
type fakeFFmpeg struct {
	mu       sync.Mutex
	calls    [][]string
	failOn   string
	content  string
	onInvoke func(args []string)
}

func (f *fakeFFmpeg) run(_ context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.onInvoke != nil {
		f.onInvoke(args)
	}
	out := args[len(args)-1]
	if f.failOn != "" && strings.Contains(strings.Join(args, " "), f.failOn) {
		// ffmpeg may leave a partial output behind before failing.
		_ = os.WriteFile(out, []byte("partial"), 0o644)
		return []byte("Subtitle codec 94213 is not supported"), errors.New("exit status 1")
	}
	content := f.content
	if content == "" {
		content = "1\n00:00:01,000 --> 00:00:02,000\nhello\n"
	}
	return nil, os.WriteFile(out, []byte(content), 0o644)
}

// fakeProbe returns canned ffprobe JSON per video path.
type fakeProbe struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	calls   int
}

func (f *fakeProbe) run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	path := args[len(args)-1]
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return []byte(f.outputs[path]), nil
}

type recordingObserver struct {
	tasks     []Task
	results   []TaskResult
	missing   []string
	processed map[string]int
}

func (r *recordingObserver) TaskFinished(_ context.Context, task Task, result TaskResult) {
	r.tasks = append(r.tasks, task)
	r.results = append(r.results, result)
}

func (r *recordingObserver) LanguageMissing(_ context.Context, _ string, lang string) {
	r.missing = append(r.missing, lang)
}

func (r *recordingObserver) FileProcessed(_ context.Context, videoFile string, extracted int) {
	if r.processed == nil {
		r.processed = map[string]int{}
	}
	r.processed[videoFile] = extracted
}
