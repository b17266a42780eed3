package subtitle

import (
	"fmt"
	"strings"
	"testing"
)

const threeBlockDoc = `1
00:00:00,000 --> 00:00:02,500
Hello there.

2
00:00:02,700 --> 00:00:05,000
How are you
doing today?

3
00:00:05,200 --> 00:00:07,000
Fine, thanks.
`

func TestScanBlocksBasic(t *testing.T) {
	blocks := ScanBlocks(threeBlockDoc)
	if len(blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(blocks))
	}

	if blocks[0].Index != "1" || blocks[1].Index != "2" || blocks[2].Index != "3" {
		t.Errorf("unexpected indices: %q %q %q", blocks[0].Index, blocks[1].Index, blocks[2].Index)
	}
	if blocks[1].Body != "How are you\ndoing today?" {
		t.Errorf("multi-line body not preserved: %q", blocks[1].Body)
	}
	if blocks[0].TimestampLine != "00:00:00,000 --> 00:00:02,500" {
		t.Errorf("timestamp line altered: %q", blocks[0].TimestampLine)
	}
}

func TestScanBlocksCoverage(t *testing.T) {
	// Spans must be ordered, non-overlapping, and each must slice back to
	// a text that itself parses as exactly one block.
	docs := map[string]int{
		threeBlockDoc: 3,
		"WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nno index here\n\n1\n00:00:03.000 --> 00:00:04.000\nindexed\n": 2,
		"preamble that never parses\n\n" + threeBlockDoc + "\ntrailing notes\n":                                  3,
	}

	for doc, want := range docs {
		blocks := ScanBlocks(doc)
		if len(blocks) != want {
			t.Errorf("expected %d blocks, got %d for doc %q", want, len(blocks), doc)
			continue
		}
		last := 0
		for i, b := range blocks {
			if b.Start < last || b.End <= b.Start || b.End > len(doc) {
				t.Errorf("block %d has bad span [%d,%d) after %d", i, b.Start, b.End, last)
			}
			if sub := ScanBlocks(doc[b.Start:b.End]); len(sub) != 1 {
				t.Errorf("block %d span does not re-parse as one block: %q", i, doc[b.Start:b.End])
			}
			last = b.End
		}
	}
}

func TestScanBlocksGeneratedDocument(t *testing.T) {
	var sb strings.Builder
	const n = 25
	for i := 1; i <= n; i++ {
		sb.WriteString(fmt.Sprintf("%d\n00:00:%02d,000 --> 00:00:%02d,500\nline %d\n\n", i, i, i, i))
	}
	blocks := ScanBlocks(sb.String())
	if len(blocks) != n {
		t.Fatalf("expected %d blocks, got %d", n, len(blocks))
	}
}

func TestScanBlocksOptionalIndex(t *testing.T) {
	doc := "00:00:01,000 --> 00:00:02,000\nno index\n"
	blocks := ScanBlocks(doc)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Index != "" {
		t.Errorf("expected absent index, got %q", blocks[0].Index)
	}
	if blocks[0].Start != 0 {
		t.Errorf("block should start at the timestamp line, got offset %d", blocks[0].Start)
	}
}

func TestScanBlocksDotSeparatorAndStyling(t *testing.T) {
	doc := "00:00:01.000 --> 00:00:02.000 align:start position:0%\nstyled cue\n"
	blocks := ScanBlocks(doc)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].TimestampLine != "00:00:01.000 --> 00:00:02.000 align:start position:0%" {
		t.Errorf("styling suffix lost: %q", blocks[0].TimestampLine)
	}
}

func TestScanBlocksMalformedPreamble(t *testing.T) {
	doc := "this is not a subtitle file\nneither is this\n"
	if blocks := ScanBlocks(doc); len(blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(blocks))
	}
}

func TestScanBlocksTimestampWithoutBody(t *testing.T) {
	doc := "00:00:01,000 --> 00:00:02,000\n\n1\n00:00:03,000 --> 00:00:04,000\nreal block\n"
	blocks := ScanBlocks(doc)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Index != "1" {
		t.Errorf("wrong block matched: %+v", blocks[0])
	}
}

func TestScanBlocksCRLF(t *testing.T) {
	doc := "1\r\n00:00:01,000 --> 00:00:02,000\r\nfirst\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nsecond\r\n"
	blocks := ScanBlocks(doc)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].TimestampLine != "00:00:01,000 --> 00:00:02,000" {
		t.Errorf("carriage return left in timestamp line: %q", blocks[0].TimestampLine)
	}
	if blocks[0].Body != "first" || blocks[1].Body != "second" {
		t.Errorf("bodies not cleaned: %q %q", blocks[0].Body, blocks[1].Body)
	}
	// Spans still count every source byte, carriage returns included.
	if got := doc[blocks[1].Start:blocks[1].End]; got != "2\r\n00:00:03,000 --> 00:00:04,000\r\nsecond\r" {
		t.Errorf("second block span off: %q", got)
	}
}

func TestScanBlocksRestartable(t *testing.T) {
	first := ScanBlocks(threeBlockDoc)
	second := ScanBlocks(threeBlockDoc)
	if len(first) != len(second) {
		t.Fatalf("scan not repeatable: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("block %d differs between scans", i)
		}
	}
}

func TestScanBlocksNumericBodyLine(t *testing.T) {
	// A numeric line at the end of a body stays in that body.
	doc := "1\n00:00:01,000 --> 00:00:02,000\nroom\n42\n\n00:00:03,000 --> 00:00:04,000\nnext\n"
	blocks := ScanBlocks(doc)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Body != "room\n42" {
		t.Errorf("numeric body line lost from first block: %q", blocks[0].Body)
	}
	if blocks[1].Index != "" {
		t.Errorf("second block gained an index from nowhere: %q", blocks[1].Index)
	}
}
