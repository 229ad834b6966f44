// Package preflight provides readiness checks for the external tools and
// filesystem paths subextract depends on.
//
// The watcher runs CheckDirectoryAccess on the watched directory before it
// subscribes to notifications, and the CLI "deps" command reports
// CheckSystemDeps. Output directories given on the command line are created
// on demand by EnsureOutputDirectory.
package preflight
