// Package session wires one subextract invocation: run id, signal-aware
// context, per-run log file, history ledger, metrics and the summary. Run
// drives either batch mode over explicit files or watch mode over a
// directory.
package session
