// Package ffprobe provides a typed wrapper around ffprobe subtitle stream
// listings.
//
// Key types:
//   - Result: parsed ffprobe output containing subtitle streams
//   - Stream: container index, codec, and tags of one subtitle stream
//
// Primary entry points:
//   - SubtitleArgs: argument vector that lists subtitle streams only
//   - Parse: decodes the JSON payload and reports malformed or incomplete output
package ffprobe
