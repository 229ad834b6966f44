// Command subextract extracts language-tagged subtitle streams from video
// files, either once for the files named on the command line or continuously
// for every video that lands in a watched directory.
//
// Subcommands:
//   - config init|validate: manage the TOML configuration
//   - deps: report ffmpeg/ffprobe availability
//   - history: list recorded extraction outcomes
//   - logs: print or follow the latest run log
package main
