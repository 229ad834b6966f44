// Package services defines shared utilities consumed by the extraction
// pipeline and the watch controller.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, video files, and languages
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     per-task failures apart from setup failures.
//
// Use these helpers when wiring new pipeline code so operational behaviour
// (error classification, observability) stays uniform.
package services
