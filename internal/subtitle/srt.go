package subtitle

import (
	"fmt"
	"strings"
)

// RenderSRT renders cues as an SRT document: 1-based index line, timestamp
// line, text, blank-line separator.
func RenderSRT(cues []Segment) string {
	var sb strings.Builder
	for i, cue := range cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(fmt.Sprintf("%s --> %s\n", FormatTimestamp(cue.Start), FormatTimestamp(cue.End)))
		sb.WriteString(strings.TrimSpace(cue.Text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}
