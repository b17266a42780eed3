package subtitle

import (
	"strings"
	"unicode/utf8"
)

// Segment is a single speech-to-text output unit. Start and End are
// seconds from the beginning of the media.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// MergeOptions control how raw segments are coalesced into subtitle cues.
type MergeOptions struct {
	MaxGap   float64 // silence longer than this forces a cue boundary
	MaxChars int     // merged text may not exceed this many characters
	MinChars int     // cues shorter than this keep merging past sentence ends
}

// DefaultMergeOptions returns the tuning used by the pipeline.
func DefaultMergeOptions() MergeOptions {
	return MergeOptions{MaxGap: 0.70, MaxChars: 90, MinChars: 20}
}

var endPunctuations = []string{".", "!", "?", "..."}

// MergeSegments coalesces consecutive transcription segments into
// subtitle-sized cues. A cue absorbs the next segment unless the silence
// gap exceeds MaxGap or the combined text would exceed MaxChars; a cue
// that already ends in sentence punctuation stops absorbing once it is at
// least MinChars long. Segment texts are trimmed and joined with a single
// space; cue spans cover the union of their source segments. Segments
// whose text trims to empty still occupy a cue and are never dropped.
func MergeSegments(segments []Segment, opts MergeOptions) []Segment {
	if len(segments) == 0 {
		return nil
	}

	merged := make([]Segment, 0, len(segments))
	current := Segment{
		Start: segments[0].Start,
		End:   segments[0].End,
		Text:  strings.TrimSpace(segments[0].Text),
	}

	for _, next := range segments[1:] {
		text := strings.TrimSpace(next.Text)
		if shouldMerge(current, next.Start, text, opts) {
			current.Text += " " + text
			current.End = next.End
			continue
		}
		merged = append(merged, current)
		current = Segment{Start: next.Start, End: next.End, Text: text}
	}

	return append(merged, current)
}

func shouldMerge(current Segment, nextStart float64, nextText string, opts MergeOptions) bool {
	gap := nextStart - current.End
	projected := utf8.RuneCountInString(current.Text) + 1 + utf8.RuneCountInString(nextText)

	switch {
	case gap > opts.MaxGap:
		return false
	case projected > opts.MaxChars:
		return false
	case !endsWithPunctuation(current.Text):
		return true
	case utf8.RuneCountInString(current.Text) < opts.MinChars:
		return true
	default:
		return false
	}
}

func endsWithPunctuation(text string) bool {
	for _, p := range endPunctuations {
		if strings.HasSuffix(text, p) {
			return true
		}
	}
	return false
}
