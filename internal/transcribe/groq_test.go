package transcribe

import (
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestGroqSegments(t *testing.T) {
	var resp openai.AudioResponse
	payload := `{
		"language": "en",
		"duration": 4.0,
		"text": "hello there",
		"segments": [
			{"id": 0, "start": 0, "end": 2.5, "text": " hello"},
			{"id": 1, "start": 2.5, "end": 4.0, "text": " there"}
		]
	}`
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatal(err)
	}

	segments := groqSegments(resp)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].End != 2.5 || segments[1].Text != " there" {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestGroqSegmentsWholeTextFallback(t *testing.T) {
	resp := openai.AudioResponse{Text: "just a transcript", Duration: 12.5}
	segments := groqSegments(resp)
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	if segments[0].Start != 0 || segments[0].End != 12.5 || segments[0].Text != "just a transcript" {
		t.Fatalf("unexpected fallback segment: %+v", segments[0])
	}
}

func TestGroqSegmentsEmpty(t *testing.T) {
	if segments := groqSegments(openai.AudioResponse{}); segments != nil {
		t.Fatalf("expected nil for empty response, got %+v", segments)
	}
}

func TestNewGroqClientRequiresKey(t *testing.T) {
	if _, err := NewGroqClient("", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}
