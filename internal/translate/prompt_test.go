package translate

import (
	"strings"
	"testing"
)

func TestBuildChunkPrompt(t *testing.T) {
	chunk := "1\n00:00:01,000 --> 00:00:02,000\nhello\n"
	prompt := buildChunkPrompt(chunk, "Vietnamese", "", nil)

	if !strings.Contains(prompt, "from 'auto'") {
		t.Error("empty source language should default to auto")
	}
	if !strings.Contains(prompt, "to 'Vietnamese'") {
		t.Error("target language missing from instruction")
	}
	if !strings.Contains(prompt, strings.TrimSpace(chunk)) {
		t.Error("chunk text missing from prompt")
	}
	if !strings.Contains(prompt, "PRESERVE THE EXACT TIMESTAMPS") {
		t.Error("timestamp preservation instruction missing")
	}
	if strings.Contains(prompt, "Context about the video") {
		t.Error("context section rendered without metadata")
	}
}

func TestBuildChunkPromptMetadata(t *testing.T) {
	md := map[string]string{
		"title":       "My Talk",
		"duration":    "120 seconds",
		"tags":        "should,not,appear",
		"description": "a conference talk",
		"speaker":     "  ",
	}
	prompt := buildChunkPrompt("chunk", "Korean", "en", md)

	if !strings.Contains(prompt, "- Title: My Talk") {
		t.Error("title line missing")
	}
	if !strings.Contains(prompt, "- Duration: 120 seconds") {
		t.Error("duration line missing")
	}
	if !strings.Contains(prompt, "- description: a conference talk") {
		t.Error("extra metadata line missing")
	}
	if strings.Contains(prompt, "should,not,appear") {
		t.Error("tags must be excluded from the prompt")
	}
	if strings.Contains(prompt, "speaker") {
		t.Error("blank metadata values must be skipped")
	}
	if strings.Index(prompt, "- Title:") > strings.Index(prompt, "- description:") {
		t.Error("title must come before free-form metadata")
	}
}
