package translate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

// Options configure one document translation run.
type Options struct {
	TargetLanguage string            // required, English language name
	SourceLanguage string            // "" or "auto" for auto-detect
	ChunkSize      int               // blocks per provider call
	MaxRetries     int               // additional attempts per chunk after the first
	Metadata       map[string]string // optional video context for the prompt
	RetryDelay     time.Duration     // pause between attempts; defaults to one second
	Progress       func(done, total int)
}

// DefaultOptions returns the orchestrator defaults used by the service.
func DefaultOptions(targetLanguage string) Options {
	return Options{
		TargetLanguage: targetLanguage,
		SourceLanguage: "auto",
		ChunkSize:      10,
		MaxRetries:     2,
		RetryDelay:     time.Second,
	}
}

// Translator drives chunked document translation through a Provider. It
// never alters timestamps or indices itself: every chunk either comes back
// from the provider structurally intact or falls back to the original
// text, and the untouched text between blocks is copied through verbatim.
type Translator struct {
	provider Provider
}

func NewTranslator(provider Provider) *Translator {
	return &Translator{provider: provider}
}

// TranslateDocument translates a subtitle document chunk by chunk.
// Chunks whose translation cannot be validated after all retries keep
// their original text; that is a successful run with partial translation,
// not an error. Errors are returned only for invalid input, cancellation,
// or a reassembly bug.
func (t *Translator) TranslateDocument(ctx context.Context, document string, opts Options) (string, error) {
	if opts.ChunkSize <= 0 {
		return "", fmt.Errorf("chunk size must be positive, got %d", opts.ChunkSize)
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}

	blocks := subtitle.ScanBlocks(document)
	asm := &assembler{source: document}

	if len(blocks) == 0 {
		// Nothing parseable: the whole document passes through unchanged.
		log.Printf("[translate] no subtitle blocks found, copying document through")
		asm.copyTo(len(document))
		return asm.finish()
	}

	log.Printf("[translate] %s: %d blocks in chunks of %d (target=%s source=%s)",
		t.provider.Name(), len(blocks), opts.ChunkSize, opts.TargetLanguage, opts.SourceLanguage)

	for start := 0; start < len(blocks); start += opts.ChunkSize {
		// Cancellation is only honored between chunks so a run never
		// emits a half-translated chunk.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		end := start + opts.ChunkSize
		if end > len(blocks) {
			end = len(blocks)
		}
		if err := t.processChunk(ctx, asm, blocks[start:end], opts); err != nil {
			return "", err
		}
		if opts.Progress != nil {
			opts.Progress(end, len(blocks))
		}
	}

	asm.copyTo(len(document))
	return asm.finish()
}

// processChunk runs the per-chunk state machine: skip-if-empty, request,
// validate, retry, and finally append either the accepted response or the
// original chunk text.
func (t *Translator) processChunk(ctx context.Context, asm *assembler, chunk []subtitle.Block, opts Options) error {
	chunkStart := chunk[0].Start
	chunkEnd := chunk[len(chunk)-1].End

	// Verbatim text between the previous chunk and this one.
	asm.copyTo(chunkStart)
	original := asm.source[chunkStart:chunkEnd]

	if !hasTranslatableText(chunk) {
		log.Printf("[translate] chunk at %s has no text, keeping original", chunk[0].TimestampLine)
		asm.appendChunk(original, chunkEnd)
		return nil
	}

	prompt := buildChunkPrompt(original, opts.TargetLanguage, opts.SourceLanguage, opts.Metadata)

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[translate] retrying chunk at %s (attempt %d/%d)",
				chunk[0].TimestampLine, attempt+1, opts.MaxRetries+1)
			select {
			case <-time.After(opts.RetryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		response, err := t.provider.Translate(ctx, prompt, original)
		if err != nil {
			log.Printf("[translate] provider %s failed for chunk at %s: %v",
				t.provider.Name(), chunk[0].TimestampLine, err)
			continue
		}

		response = strings.TrimSpace(response)
		if err := validateChunk(chunk, response); err != nil {
			log.Printf("[translate] invalid response for chunk at %s (attempt %d/%d): %v",
				chunk[0].TimestampLine, attempt+1, opts.MaxRetries+1, err)
			continue
		}

		asm.appendChunk(response, chunkEnd)
		return nil
	}

	log.Printf("[translate] chunk at %s failed after %d attempts, keeping original text",
		chunk[0].TimestampLine, opts.MaxRetries+1)
	asm.appendChunk(original, chunkEnd)
	return nil
}

// hasTranslatableText reports whether any block in the chunk has a
// non-whitespace body.
func hasTranslatableText(chunk []subtitle.Block) bool {
	for _, b := range chunk {
		if strings.TrimSpace(b.Body) != "" {
			return true
		}
	}
	return false
}

// validateChunk enforces the structural contract on a provider response:
// same block count, identical index values, byte-identical (trimmed)
// timestamp lines, and no silently dropped body text. Timestamp lines are
// deliberately compared as opaque strings; re-parsing them numerically
// would open the door to timing drift.
func validateChunk(original []subtitle.Block, response string) error {
	if response == "" {
		if len(original) == 0 {
			return nil
		}
		return fmt.Errorf("empty response for %d blocks", len(original))
	}

	translated := subtitle.ScanBlocks(response)
	if len(translated) != len(original) {
		return fmt.Errorf("block count mismatch: expected %d, got %d", len(original), len(translated))
	}

	for i, orig := range original {
		got := translated[i]

		if strings.TrimSpace(orig.Index) != strings.TrimSpace(got.Index) {
			return fmt.Errorf("block %d: index mismatch: %q vs %q", i+1, orig.Index, got.Index)
		}

		origTS := strings.TrimSpace(orig.TimestampLine)
		gotTS := strings.TrimSpace(got.TimestampLine)
		if origTS == "" || gotTS == "" {
			return fmt.Errorf("block %d: missing timestamp line", i+1)
		}
		if origTS != gotTS {
			return fmt.Errorf("block %d: timestamp mismatch: %q vs %q", i+1, origTS, gotTS)
		}

		if strings.TrimSpace(orig.Body) != "" && strings.TrimSpace(got.Body) == "" {
			return fmt.Errorf("block %d: translated text is empty but original was not", i+1)
		}
	}

	return nil
}

// assembler accumulates the output document while tracking how far into
// the source it has copied, so untouched spans are preserved byte for
// byte. It replaces the closure-over-shared-offsets pattern with explicit
// state.
type assembler struct {
	source string
	out    strings.Builder
	last   int // end of the last copied/replaced source span
}

// copyTo copies source text verbatim up to offset.
func (a *assembler) copyTo(offset int) {
	if offset > a.last {
		a.out.WriteString(a.source[a.last:offset])
		a.last = offset
	}
}

// appendChunk writes chunk content (translated or fallback) that stands in
// for the source span ending at srcEnd.
func (a *assembler) appendChunk(text string, srcEnd int) {
	a.out.WriteString(text)
	a.last = srcEnd
}

// finish verifies full source coverage and guarantees a trailing newline.
// A coverage gap means a scanner/orchestrator bug and is never swallowed.
func (a *assembler) finish() (string, error) {
	if a.last != len(a.source) {
		return "", fmt.Errorf("reassembly integrity error: covered %d of %d source bytes", a.last, len(a.source))
	}
	out := a.out.String()
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}
