package subtitle

import "fmt"

// FormatTimestamp converts a second count into an SRT timestamp
// (HH:MM:SS,mmm). Hours are unbounded; sub-millisecond precision is
// truncated, never rounded, so cue timing can only err early.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	totalMs := int64(seconds * 1000)
	h := totalMs / 3600000
	totalMs %= 3600000
	m := totalMs / 60000
	totalMs %= 60000
	s := totalMs / 1000
	ms := totalMs % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
