package translate

import (
	"fmt"
	"sort"
	"strings"
)

// metadata keys with a dedicated slot in the prompt; "tags" is dropped
// outright because free-form tag lists mislead the model more than they
// help.
const (
	metaTitle    = "title"
	metaDuration = "duration"
	metaTags     = "tags"
)

// buildChunkPrompt assembles the provider prompt for one chunk: the
// translation instruction, optional video context, the structural contract
// the response must honor, and the verbatim chunk text.
func buildChunkPrompt(chunk, targetLanguage, sourceLanguage string, metadata map[string]string) string {
	if sourceLanguage == "" {
		sourceLanguage = "auto"
	}

	lines := []string{
		fmt.Sprintf("You are an expert subtitle translator. Translate the text portions of the following chunk of SRT subtitle blocks from '%s' (auto-detect if 'auto') to '%s'.",
			sourceLanguage, targetLanguage),
	}

	if ctxLines := contextLines(metadata); len(ctxLines) > 0 {
		lines = append(lines, "\n**Context about the video:**")
		lines = append(lines, ctxLines...)
	}

	lines = append(lines,
		"\n**IMPORTANT INSTRUCTIONS (MUST FOLLOW STRICTLY for SRT format):**",
		fmt.Sprintf("- Translate ONLY the actual subtitle text lines within EACH block into '%s'.", targetLanguage),
		"- PRESERVE THE EXACT TIMESTAMPS (e.g., '00:00:20,000 --> 00:00:24,400'). DO NOT ALTER THEM.",
		"- PRESERVE THE ORIGINAL STRUCTURE, including sequence numbers (if present) and the exact blank lines BETWEEN blocks.",
		"- The output MUST be a valid chunk of SRT blocks, maintaining the same number of blocks and structure as the input chunk.",
		"- DO NOT add any explanations, comments, notes, or text outside the required SRT structure.",
		"- DO NOT include any backticks or code block markers in the output.",
		"- Ensure the output starts directly with the first block's index (if present) or timestamp, and ends exactly after the last block's text.",
		"\n**Original SRT Chunk:**",
		strings.TrimSpace(chunk),
		fmt.Sprintf("\n**Translated SRT Chunk (only text translated to %s, structure strictly preserved):**", targetLanguage),
	)

	return strings.Join(lines, "\n")
}

// contextLines renders caller-supplied metadata: title and duration first,
// then the remaining non-empty keys in stable order.
func contextLines(metadata map[string]string) []string {
	var lines []string
	if v := strings.TrimSpace(metadata[metaTitle]); v != "" {
		lines = append(lines, "- Title: "+v)
	}
	if v := strings.TrimSpace(metadata[metaDuration]); v != "" {
		lines = append(lines, "- Duration: "+v)
	}

	var rest []string
	for k, v := range metadata {
		if k == metaTitle || k == metaDuration || k == metaTags {
			continue
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		rest = append(rest, fmt.Sprintf("- %s: %s", k, v))
	}
	sort.Strings(rest)
	return append(lines, rest...)
}
