package subtitle

import (
	"regexp"
	"strings"
)

// Block is a read-only structural view into a subtitle document: an
// optional numeric index line, a timestamp line kept verbatim (it is never
// re-parsed into seconds), and one or more body lines. Start and End are
// byte offsets into the source document, spanning the index line through
// the last body character, so callers can recover the text between blocks
// exactly.
type Block struct {
	Index         string // index line content, "" when the line is absent
	TimestampLine string // verbatim timestamp line, without terminator
	Body          string // body lines joined with "\n"
	Start         int
	End           int
}

// timestampLineRe matches an SRT/VTT timestamp line at the start of a
// line; both "," and "." fractional separators are accepted, and trailing
// styling content after the range is allowed.
var timestampLineRe = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[,.]\d{3}\s*-->\s*\d{2}:\d{2}:\d{2}[,.]\d{3}`)

// ScanBlocks scans a subtitle document for structural blocks. Content that
// never forms a block (preambles, stray lines, blank separators) is simply
// not covered by any returned span; scanning is pure and restartable and
// never treats malformed input as an error. A block requires a timestamp
// line followed by at least one non-empty body line; the body ends at the
// first empty line or at end of document.
func ScanBlocks(document string) []Block {
	lines, offsets := splitLines(document)

	var blocks []Block
	for i := 0; i < len(lines); {
		if !timestampLineRe.MatchString(lines[i]) {
			i++
			continue
		}

		start := offsets[i]
		index := ""
		if i > 0 && isIndexLine(lines[i-1]) && !coveredBy(blocks, offsets[i-1]) {
			index = strings.TrimSpace(lines[i-1])
			start = offsets[i-1]
		}

		// Collect body lines until a blank line or end of document.
		bodyStart := i + 1
		bodyEnd := bodyStart
		for bodyEnd < len(lines) && !isBlankLine(lines[bodyEnd]) {
			bodyEnd++
		}
		if bodyEnd == bodyStart {
			// Timestamp line with no body: not a block.
			i++
			continue
		}

		last := bodyEnd - 1
		body := make([]string, 0, bodyEnd-bodyStart)
		for _, l := range lines[bodyStart:bodyEnd] {
			body = append(body, strings.TrimSuffix(l, "\r"))
		}
		blocks = append(blocks, Block{
			Index:         index,
			TimestampLine: strings.TrimSuffix(lines[i], "\r"),
			Body:          strings.Join(body, "\n"),
			Start:         start,
			End:           offsets[last] + len(lines[last]),
		})
		i = bodyEnd
	}

	return blocks
}

// isBlankLine treats a lone "\r" as blank so CRLF documents separate
// blocks the same way LF documents do.
func isBlankLine(line string) bool {
	return line == "" || line == "\r"
}

// splitLines splits on "\n" and records the byte offset of each line.
// Carriage returns stay attached to their lines so offsets count every
// source byte.
func splitLines(document string) ([]string, []int) {
	lines := strings.Split(document, "\n")
	offsets := make([]int, len(lines))
	pos := 0
	for i, line := range lines {
		offsets[i] = pos
		pos += len(line) + 1
	}
	return lines, offsets
}

// isIndexLine reports whether a line holds only an integer index
// (trailing whitespace tolerated).
func isIndexLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// coveredBy reports whether offset falls inside an already-emitted block,
// which prevents a numeric body line from doubling as the next block's
// index line.
func coveredBy(blocks []Block, offset int) bool {
	if len(blocks) == 0 {
		return false
	}
	last := blocks[len(blocks)-1]
	return offset >= last.Start && offset < last.End
}
