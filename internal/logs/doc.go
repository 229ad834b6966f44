// Package logs reads run log files for the CLI.
//
// Last returns the trailing lines of a log with bounded memory. Follow
// streams lines appended afterwards, waking on fsnotify write events with a
// slow poll as backstop, and stops when the context ends. Format renders the
// JSON lines written to run logs in the console layout.
package logs
