package ffprobe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMalformed reports output that is not valid JSON.
	ErrMalformed = errors.New("ffprobe output is not valid json")
	// ErrMissingStreams reports JSON that lacks the top-level streams field.
	ErrMissingStreams = errors.New("ffprobe output has no streams field")
)

// Result represents the parsed output from an ffprobe subtitle listing.
type Result struct {
	Streams []Stream `json:"streams"`
}

// Stream describes a single subtitle stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	Tags      Tags   `json:"tags"`
}

// Tags carries the stream metadata subextract cares about.
type Tags struct {
	Language string `json:"language"`
	Title    string `json:"title"`
}

// HasLanguage reports whether the stream carries a language tag.
func (s Stream) HasLanguage() bool {
	return s.Tags.Language != ""
}

// SubtitleArgs returns the ffprobe argument vector that lists subtitle
// streams of path with their index, codec, and language/title tags.
func SubtitleArgs(path string) []string {
	return []string{
		"-v", "error",
		"-hide_banner",
		"-select_streams", "s",
		"-show_entries", "stream=index,codec_name:stream_tags=language,title",
		"-of", "json",
		"--", path,
	}
}

// Parse decodes an ffprobe JSON payload. Empty or invalid JSON yields
// ErrMalformed and a payload without a streams field yields ErrMissingStreams.
func Parse(data []byte) (Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{}, fmt.Errorf("%w: empty output", ErrMalformed)
	}
	var payload struct {
		Streams *[]Stream `json:"streams"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if payload.Streams == nil {
		return Result{}, ErrMissingStreams
	}
	return Result{Streams: *payload.Streams}, nil
}

// Languages returns the distinct language tags in container order.
func (r Result) Languages() []string {
	seen := make(map[string]struct{}, len(r.Streams))
	var out []string
	for _, s := range r.Streams {
		if !s.HasLanguage() {
			continue
		}
		if _, ok := seen[s.Tags.Language]; ok {
			continue
		}
		seen[s.Tags.Language] = struct{}{}
		out = append(out, s.Tags.Language)
	}
	return out
}
