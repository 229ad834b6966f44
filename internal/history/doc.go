// Package history keeps a SQLite ledger of every run and every extraction
// outcome so operators can audit what a watcher did overnight.
//
// Store owns the database (WAL mode, busy retries, embedded schema). Recorder
// adapts a Store to the extraction pipeline's Observer interface; recording
// failures are logged and never interrupt extraction.
//
// Schema changes bump schemaVersion in schema.go; users delete history.db to
// adopt a new schema.
package history
