// Package watch implements directory watch mode.
//
// Controller moves through Bootstrapping, Watching, Draining and Stopped.
// Bootstrapping dispatches video files already present in the directory;
// Watching consumes Created events one at a time in arrival order; Draining
// tears the subscription and directory lock down when the context is
// cancelled. Every file waits for readiness before it reaches the
// Dispatcher, and run counters are threaded through each dispatch as a
// value and returned from Run.
//
// Source abstracts filesystem notifications. FSNotifySource adapts
// fsnotify and delivers only create events for a single, non-recursive
// directory.
package watch
