package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient transcribes audio through Groq's hosted whisper, which speaks
// the OpenAI audio API.
type GroqClient struct {
	client  *openai.Client
	model   string
	retries int
}

func NewGroqClient(apiKey, model string) (*GroqClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("groq: API key not configured")
	}
	if model == "" {
		model = "whisper-large-v3"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL

	return &GroqClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		retries: 2,
	}, nil
}

func (g *GroqClient) Name() string {
	return "groq"
}

func (g *GroqClient) Transcribe(ctx context.Context, audioPath, language string) ([]subtitle.Segment, string, error) {
	req := openai.AudioRequest{
		Model:    g.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if language != "" && language != "auto" {
		req.Language = language
	}

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		resp, err := g.client.CreateTranscription(ctx, req)
		if err == nil {
			return groqSegments(resp), resp.Language, nil
		}
		lastErr = err
		log.Printf("[groq] transcription attempt %d/%d failed: %v", attempt+1, g.retries+1, err)

		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		if attempt == g.retries {
			break
		}

		wait := time.Duration(1<<uint(attempt)) * time.Second
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			wait = time.Duration(10*(attempt+1)) * time.Second
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}

	return nil, "", fmt.Errorf("groq transcription: %w", lastErr)
}

// groqSegments converts the verbose JSON response. When the backend sends
// no segment timings the whole transcript becomes one segment so the
// pipeline still produces a subtitle.
func groqSegments(resp openai.AudioResponse) []subtitle.Segment {
	if len(resp.Segments) == 0 {
		if resp.Text == "" {
			return nil
		}
		return []subtitle.Segment{{Start: 0, End: resp.Duration, Text: resp.Text}}
	}

	segments := make([]subtitle.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, subtitle.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return segments
}
