package translate

import (
	"strings"
	"testing"
)

func TestDecodeBlockPayloadBareArray(t *testing.T) {
	content := `[{"id":"1","start":"00:00:01,000","end":"00:00:02,000","text":"xin chào"}]`
	blocks, err := decodeBlockPayload(content)
	if err != nil {
		t.Fatalf("decodeBlockPayload: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "xin chào" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestDecodeBlockPayloadFenced(t *testing.T) {
	content := "```json\n[{\"id\":\"1\",\"start\":\"00:00:01,000\",\"end\":\"00:00:02,000\",\"text\":\"hi\"}]\n```"
	blocks, err := decodeBlockPayload(content)
	if err != nil {
		t.Fatalf("decodeBlockPayload on fenced array: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "1" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestDecodeBlockPayloadEmbedded(t *testing.T) {
	content := `Here is the translation: [{"id":"2","start":"00:00:03,000","end":"00:00:04,000","text":"ok"}] hope that helps`
	blocks, err := decodeBlockPayload(content)
	if err != nil {
		t.Fatalf("decodeBlockPayload on embedded array: %v", err)
	}
	if len(blocks) != 1 || blocks[0].ID != "2" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestDecodeBlockPayloadSingleObject(t *testing.T) {
	content := `{"id":"1","start":"00:00:01,000","end":"00:00:02,000","text":"solo"}`
	blocks, err := decodeBlockPayload(content)
	if err != nil {
		t.Fatalf("decodeBlockPayload on single object: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Text != "solo" {
		t.Fatalf("unexpected blocks: %+v", blocks)
	}
}

func TestDecodeBlockPayloadGarbage(t *testing.T) {
	if _, err := decodeBlockPayload("not json at all"); err == nil {
		t.Fatal("expected error for non-JSON content")
	}
}

func TestRenderBlockPayloadRoundTrip(t *testing.T) {
	blocks := []blockPayload{
		{ID: "1", Start: "00:00:01,000", End: "00:00:02,000", Text: "first"},
		{ID: "2", Start: "00:00:03,000", End: "00:00:04,000", Text: "second"},
	}
	srt := renderBlockPayload(blocks)

	want := "1\n00:00:01,000 --> 00:00:02,000\nfirst\n\n2\n00:00:03,000 --> 00:00:04,000\nsecond\n"
	if srt != want {
		t.Fatalf("renderBlockPayload:\n%q\nwant:\n%q", srt, want)
	}
	if strings.Count(srt, "-->") != 2 {
		t.Fatal("expected two timestamp lines")
	}
}
