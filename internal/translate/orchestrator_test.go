package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

// fakeProvider adapts a function to the Provider interface for tests.
type fakeProvider struct {
	fn    func(ctx context.Context, prompt, fallback string) (string, error)
	calls int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Translate(ctx context.Context, prompt, fallback string) (string, error) {
	f.calls++
	return f.fn(ctx, prompt, fallback)
}

// rewriteBodies re-emits the blocks of an SRT chunk with each body passed
// through f, preserving indices and timestamps. It plays the part of a
// well-behaved model.
func rewriteBodies(chunk string, f func(string) string) string {
	blocks := subtitle.ScanBlocks(chunk)
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		var sb strings.Builder
		if b.Index != "" {
			sb.WriteString(b.Index)
			sb.WriteString("\n")
		}
		sb.WriteString(b.TimestampLine)
		sb.WriteString("\n")
		sb.WriteString(f(b.Body))
		sb.WriteString("\n")
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n")
}

func srtDoc(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "%d\n00:00:%02d,000 --> 00:00:%02d,500\nline %d\n\n", i+1, i, i, i+1)
	}
	return sb.String()
}

func fastOptions() Options {
	opts := DefaultOptions("Vietnamese")
	opts.RetryDelay = time.Millisecond
	return opts
}

func TestTranslateDocumentRewritesBodies(t *testing.T) {
	doc := srtDoc(3)
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return rewriteBodies(fallback, func(body string) string {
			return "xin chao " + body
		}), nil
	}}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, fastOptions())
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}

	orig := subtitle.ScanBlocks(doc)
	got := subtitle.ScanBlocks(out)
	if len(got) != len(orig) {
		t.Fatalf("block count changed: %d -> %d", len(orig), len(got))
	}
	for i := range orig {
		if got[i].TimestampLine != orig[i].TimestampLine {
			t.Errorf("block %d timestamp changed: %q -> %q", i, orig[i].TimestampLine, got[i].TimestampLine)
		}
		if got[i].Index != orig[i].Index {
			t.Errorf("block %d index changed: %q -> %q", i, orig[i].Index, got[i].Index)
		}
		if want := "xin chao line " + got[i].Index; got[i].Body != want {
			t.Errorf("block %d body = %q, want %q", i, got[i].Body, want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output missing trailing newline")
	}
}

func TestTranslateDocumentChunking(t *testing.T) {
	doc := srtDoc(5)
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return fallback, nil
	}}

	opts := fastOptions()
	opts.ChunkSize = 2
	var progress []int
	opts.Progress = func(done, total int) {
		if total != 5 {
			t.Errorf("progress total = %d, want 5", total)
		}
		progress = append(progress, done)
	}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3 (chunks of 2 over 5 blocks)", p.calls)
	}
	if out != doc {
		t.Error("identity provider should leave the document unchanged")
	}
	if len(progress) != 3 || progress[2] != 5 {
		t.Errorf("progress callbacks = %v, want [2 4 5]", progress)
	}
}

func TestTranslateDocumentFallbackAfterRetries(t *testing.T) {
	doc := srtDoc(2)
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		// Drop the timestamp line of the first block: structurally invalid.
		blocks := subtitle.ScanBlocks(fallback)
		return blocks[0].Body + "\n", nil
	}}

	opts := fastOptions()
	opts.MaxRetries = 2

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if p.calls != opts.MaxRetries+1 {
		t.Errorf("provider called %d times, want %d", p.calls, opts.MaxRetries+1)
	}
	if out != doc {
		t.Error("invalid responses must fall back to the original chunk text")
	}
}

func TestTranslateDocumentRetryThenAccept(t *testing.T) {
	doc := srtDoc(2)
	p := &fakeProvider{}
	p.fn = func(_ context.Context, _, fallback string) (string, error) {
		if p.calls == 1 {
			return "", errors.New("transient upstream failure")
		}
		return rewriteBodies(fallback, func(body string) string { return "ok " + body }), nil
	}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, fastOptions())
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times, want 2", p.calls)
	}
	if !strings.Contains(out, "ok line 1") {
		t.Errorf("second attempt result not used:\n%s", out)
	}
}

func TestTranslateDocumentRejectsAlteredTimestamps(t *testing.T) {
	doc := srtDoc(1)
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return strings.Replace(fallback, "00:00:00,500", "00:00:00,501", 1), nil
	}}

	opts := fastOptions()
	opts.MaxRetries = 0

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, opts)
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if out != doc {
		t.Error("a response with a drifted timestamp must be rejected")
	}
}

func TestTranslateDocumentRejectsEmptiedBody(t *testing.T) {
	doc := srtDoc(1)
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return rewriteBodies(fallback, func(string) string { return "." }), nil
	}}
	// "." is non-empty, so this response is accepted; an actually emptied
	// body would not survive scanning at all and trips the count check.
	empty := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		blocks := subtitle.ScanBlocks(fallback)
		return blocks[0].Index + "\n" + blocks[0].TimestampLine + "\n\n", nil
	}}

	opts := fastOptions()
	opts.MaxRetries = 0

	if out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, opts); err != nil || out == doc {
		t.Errorf("minimal non-empty body should be accepted (err=%v)", err)
	}
	if out, err := NewTranslator(empty).TranslateDocument(context.Background(), doc, opts); err != nil || out != doc {
		t.Errorf("emptied body must fall back to original (err=%v)", err)
	}
}

func TestTranslateDocumentSkipsEmptyChunks(t *testing.T) {
	doc := "1\n00:00:00,000 --> 00:00:01,000\n \n\n2\n00:00:01,000 --> 00:00:02,000\n\t\n"
	p := &fakeProvider{fn: func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("provider must not be called for whitespace-only chunks")
		return "", nil
	}}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, fastOptions())
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if out != doc {
		t.Errorf("whitespace-only document changed:\n%q\n%q", doc, out)
	}
}

func TestTranslateDocumentPreservesSurroundingText(t *testing.T) {
	doc := "WEBVTT preamble junk\n\n" + srtDoc(2) + "trailing note"
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return rewriteBodies(fallback, func(body string) string { return "t " + body }), nil
	}}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, fastOptions())
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if !strings.HasPrefix(out, "WEBVTT preamble junk\n\n") {
		t.Error("preamble not preserved verbatim")
	}
	if !strings.HasSuffix(out, "trailing note\n") {
		t.Error("trailing text not preserved (with appended newline)")
	}
}

func TestTranslateDocumentNoBlocks(t *testing.T) {
	doc := "just some text\nwith no timestamps\n"
	p := &fakeProvider{fn: func(_ context.Context, _, _ string) (string, error) {
		t.Fatal("provider must not be called when nothing parses")
		return "", nil
	}}

	out, err := NewTranslator(p).TranslateDocument(context.Background(), doc, fastOptions())
	if err != nil {
		t.Fatalf("TranslateDocument: %v", err)
	}
	if out != doc {
		t.Errorf("unparseable document changed: %q -> %q", doc, out)
	}
}

func TestTranslateDocumentCancellation(t *testing.T) {
	doc := srtDoc(4)
	ctx, cancel := context.WithCancel(context.Background())

	p := &fakeProvider{}
	p.fn = func(_ context.Context, _, fallback string) (string, error) {
		if p.calls == 2 {
			cancel()
		}
		return fallback, nil
	}

	opts := fastOptions()
	opts.ChunkSize = 1

	_, err := NewTranslator(p).TranslateDocument(ctx, doc, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.calls != 2 {
		t.Errorf("provider called %d times after cancellation, want 2", p.calls)
	}
}

func TestTranslateDocumentInvalidChunkSize(t *testing.T) {
	p := &fakeProvider{fn: func(_ context.Context, _, fallback string) (string, error) {
		return fallback, nil
	}}
	opts := fastOptions()
	opts.ChunkSize = 0
	if _, err := NewTranslator(p).TranslateDocument(context.Background(), srtDoc(1), opts); err == nil {
		t.Fatal("expected error for non-positive chunk size")
	}
}

func TestValidateChunkBlockCount(t *testing.T) {
	doc := srtDoc(2)
	blocks := subtitle.ScanBlocks(doc)
	if err := validateChunk(blocks, srtDoc(1)); err == nil {
		t.Error("expected block count mismatch error")
	}
	if err := validateChunk(blocks, strings.TrimSpace(doc)); err != nil {
		t.Errorf("identical chunk rejected: %v", err)
	}
	if err := validateChunk(blocks, ""); err == nil {
		t.Error("expected error for empty response against non-empty chunk")
	}
}
