package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiProvider translates chunks through the Google Gemini API in JSON
// response mode. Safety filters are disabled: subtitle dialogue trips them
// constantly and a blocked chunk is worse than an unfiltered one.
type GeminiProvider struct {
	apiKey     string
	model      string
	retries    int
	httpClient *http.Client
}

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		retries: 2,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

func (g *GeminiProvider) Translate(ctx context.Context, prompt, fallback string) (string, error) {
	fullPrompt := prompt + "\n\n" + jsonInstruction

	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		text, blocked, err := g.generate(ctx, fullPrompt)
		if err == nil {
			blocks, perr := decodeBlockPayload(text)
			if perr == nil {
				return renderBlockPayload(blocks), nil
			}
			lastErr = perr
			log.Printf("[gemini] JSON parse error on attempt %d: %v", attempt+1, perr)
		} else {
			if blocked {
				// A safety block will not resolve on retry.
				log.Printf("[gemini] prompt blocked, keeping original chunk: %v", err)
				return fallback, err
			}
			lastErr = err
			log.Printf("[gemini] API error on attempt %d: %v", attempt+1, err)
		}

		if attempt == g.retries {
			break
		}
		if err := sleepCtx(ctx, g.backoff(lastErr, attempt)); err != nil {
			return fallback, err
		}
	}

	return fallback, fmt.Errorf("gemini: exhausted %d attempts: %w", g.retries+1, lastErr)
}

// backoff waits longer on rate limiting than on ordinary failures.
func (g *GeminiProvider) backoff(err error, attempt int) time.Duration {
	if isRateLimited(err) {
		wait := time.Duration(10*(attempt+1)) * time.Second
		if wait > time.Minute {
			wait = time.Minute
		}
		log.Printf("[gemini] rate limited, waiting %s before retry", wait)
		return wait
	}
	return time.Duration(1<<uint(attempt)) * time.Second
}

// generate performs one generateContent call and returns the model text.
// The second return value reports a safety block, which is terminal.
func (g *GeminiProvider) generate(ctx context.Context, prompt string) (string, bool, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.1,
			"responseMimeType": "application/json",
		},
		"safetySettings": []map[string]string{
			{"category": "HARM_CATEGORY_HARASSMENT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_HATE_SPEECH", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_SEXUALLY_EXPLICIT", "threshold": "BLOCK_NONE"},
			{"category": "HARM_CATEGORY_DANGEROUS_CONTENT", "threshold": "BLOCK_NONE"},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, err
	}

	url := fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", false, fmt.Errorf("gemini API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(body))
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason"`
		} `json:"promptFeedback"`
	}
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", false, fmt.Errorf("parse response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		if geminiResp.PromptFeedback.BlockReason != "" {
			return "", true, fmt.Errorf("gemini blocked: %s", geminiResp.PromptFeedback.BlockReason)
		}
		return "", false, fmt.Errorf("empty gemini response")
	}
	if fr := geminiResp.Candidates[0].FinishReason; fr != "" && fr != "STOP" {
		log.Printf("[gemini] finishReason=%s", fr)
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, false, nil
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}

// sleepCtx sleeps for d unless the context is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
