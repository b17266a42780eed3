package translate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider translates chunks through OpenRouter's
// OpenAI-compatible API. It tries the priority model first and falls back
// to a secondary model, each with its own retry loop; the whole chain is
// one opaque call to the orchestrator.
type OpenRouterProvider struct {
	client        *openai.Client
	priorityModel string
	fallbackModel string
	retries       int
}

func NewOpenRouterProvider(apiKey, priorityModel, fallbackModel string) (*OpenRouterProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openrouter: API key not configured")
	}
	if priorityModel == "" {
		priorityModel = "xiaomi/mimo-v2-flash:free"
	}
	if fallbackModel == "" {
		fallbackModel = "mistralai/devstral-2512:free"
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL

	return &OpenRouterProvider{
		client:        openai.NewClientWithConfig(cfg),
		priorityModel: priorityModel,
		fallbackModel: fallbackModel,
		retries:       2,
	}, nil
}

func (o *OpenRouterProvider) Name() string {
	return "openrouter"
}

func (o *OpenRouterProvider) Translate(ctx context.Context, prompt, fallback string) (string, error) {
	fullPrompt := prompt + "\n\n" + jsonInstruction

	var lastErr error
	for _, model := range []string{o.priorityModel, o.fallbackModel} {
		for attempt := 0; attempt <= o.retries; attempt++ {
			log.Printf("[openrouter] translating with %s, attempt %d/%d", model, attempt+1, o.retries+1)

			text, err := o.complete(ctx, model, fullPrompt)
			if err == nil {
				blocks, perr := decodeBlockPayload(text)
				if perr == nil {
					return renderBlockPayload(blocks), nil
				}
				err = perr
			}
			lastErr = fmt.Errorf("model %s: %w", model, err)
			log.Printf("[openrouter] %v", lastErr)

			if ctx.Err() != nil {
				return fallback, ctx.Err()
			}
			if attempt == o.retries {
				break
			}

			wait := time.Second
			if isRateLimitError(err) {
				wait = time.Duration(1<<uint(attempt)) * time.Second
			}
			if err := sleepCtx(ctx, wait); err != nil {
				return fallback, err
			}
		}
		log.Printf("[openrouter] exhausted retries for %s, switching model", model)
	}

	return fallback, fmt.Errorf("openrouter: all models failed: %w", lastErr)
}

func (o *OpenRouterProvider) complete(ctx context.Context, model, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func isRateLimitError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429
	}
	return isRateLimited(err)
}
