// Package extract pulls language-matched subtitle streams out of video files.
//
// The pipeline has three layers:
//   - Selector asks ffprobe for subtitle streams and keeps the ones whose
//     language tag equals the requested code.
//   - Executor converts one stream in two ffmpeg passes (styled intermediate,
//     then plain timed text) and always removes the intermediate file.
//   - Orchestrator walks the requested languages for one video, names the
//     outputs, and counts successful extractions.
//
// Per-stream failures are logged and reported as unsuccessful results; only
// invalid input (a missing video file) or cancellation is returned as an
// error. Observers receive every task outcome for the history ledger and
// metrics.
package extract
