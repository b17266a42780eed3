package translate

import (
	"encoding/json"
	"fmt"
	"strings"
)

// jsonInstruction is appended by providers that ask the model for
// structured output instead of raw SRT text.
const jsonInstruction = `Output the result strictly as a JSON Array of objects.
Each object must have these keys: "id" (string), "start" (string timestamp), "end" (string timestamp), "text" (translated string).
Example: [{"id": "1", "start": "00:00:01,000", "end": "00:00:05,000", "text": "Xin chào"}]`

// blockPayload is one subtitle block as returned by a JSON-mode model.
type blockPayload struct {
	ID    string `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

// decodeBlockPayload parses model output into block payloads. Models wrap
// arrays in markdown fences or prose often enough that a bare array, a
// single object, and an embedded array are all accepted.
func decodeBlockPayload(content string) ([]blockPayload, error) {
	content = strings.TrimSpace(content)

	var blocks []blockPayload
	if err := json.Unmarshal([]byte(content), &blocks); err == nil {
		return blocks, nil
	}

	var single blockPayload
	if err := json.Unmarshal([]byte(content), &single); err == nil && single.Start != "" {
		return []blockPayload{single}, nil
	}

	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &blocks); err == nil {
			return blocks, nil
		}
	}

	cleaned := strings.TrimSpace(strings.NewReplacer("```json", "", "```", "").Replace(content))
	if err := json.Unmarshal([]byte(cleaned), &blocks); err != nil {
		return nil, fmt.Errorf("parse model output as block array: %w", err)
	}
	return blocks, nil
}

// renderBlockPayload turns block payloads back into SRT text.
func renderBlockPayload(blocks []blockPayload) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("%s\n%s --> %s\n%s\n", b.ID, b.Start, b.End, b.Text))
	}
	return strings.Join(parts, "\n")
}
