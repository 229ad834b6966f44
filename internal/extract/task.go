package extract

import (
	"path/filepath"
	"strconv"
	"time"
)

// Task is one stream extraction derived from a video, a language, and a
// matched stream. It is never persisted.
type Task struct {
	VideoFile        string
	Language         string
	StreamIndex      int
	Suffix           string
	IntermediatePath string
	FinalPath        string
}

// TaskResult reports how a single Task ended.
type TaskResult struct {
	Success   bool
	Stage     string
	Err       error
	Duration  time.Duration
	SizeBytes int64
}

// Naming controls the file extensions used for intermediate and final artifacts.
type Naming struct {
	IntermediateExt string
	FinalExt        string
}

// DefaultNaming writes .ass intermediates and .srt outputs.
var DefaultNaming = Naming{IntermediateExt: "ass", FinalExt: "srt"}

// Paths returns {outputDir}/{baseName}_{language}{suffix}.{ext} for both artifacts.
func (n Naming) Paths(outputDir, baseName, language, suffix string) (intermediate, final string) {
	stem := baseName + "_" + language + suffix
	return filepath.Join(outputDir, stem+"."+n.IntermediateExt), filepath.Join(outputDir, stem+"."+n.FinalExt)
}

// OutputPaths computes artifact paths with DefaultNaming.
func OutputPaths(outputDir, baseName, language, suffix string) (intermediate, final string) {
	return DefaultNaming.Paths(outputDir, baseName, language, suffix)
}

// DisambiguationSuffix returns "" when a language has a single matching
// stream and "_<ordinal>" (zero-based) when several streams share it.
func DisambiguationSuffix(ordinal, matches int) string {
	if matches <= 1 {
		return ""
	}
	return "_" + strconv.Itoa(ordinal)
}
