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

// SelfHostedProvider talks to a self-hosted LLM endpoint that accepts a raw
// prompt and returns translated SRT text directly, no JSON block payload.
type SelfHostedProvider struct {
	endpoint   string
	httpClient *http.Client
}

func NewSelfHostedProvider(endpoint string) (*SelfHostedProvider, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("selfhosted: endpoint not configured")
	}
	return &SelfHostedProvider{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}, nil
}

func (s *SelfHostedProvider) Name() string {
	return "selfhosted"
}

func (s *SelfHostedProvider) Translate(ctx context.Context, prompt, fallback string) (string, error) {
	reqBody, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return fallback, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.endpoint+"/translate", bytes.NewReader(reqBody))
	if err != nil {
		return fallback, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fallback, fmt.Errorf("selfhosted LLM request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fallback, err
	}
	if resp.StatusCode != http.StatusOK {
		return fallback, fmt.Errorf("selfhosted LLM error (status %d): %s", resp.StatusCode, string(body))
	}

	var llmResp struct {
		TranslatedText string `json:"translated_text"`
	}
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return fallback, fmt.Errorf("parse selfhosted response: %w", err)
	}
	if strings.TrimSpace(llmResp.TranslatedText) == "" {
		return fallback, fmt.Errorf("selfhosted LLM returned empty translation")
	}

	log.Printf("[selfhosted] translated chunk (%d bytes in, %d bytes out)", len(prompt), len(llmResp.TranslatedText))
	return llmResp.TranslatedText, nil
}
