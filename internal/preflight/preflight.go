package preflight

import "subextract/internal/config"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for a run. watchDir and outputDir
// are skipped when empty.
func RunAll(cfg *config.Config, watchDir, outputDir string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	if watchDir != "" {
		results = append(results, CheckDirectoryAccess("Watch directory", watchDir))
	}
	if outputDir != "" {
		results = append(results, EnsureOutputDirectory(outputDir))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
