package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

// WhisperServerClient talks to a local whisper.cpp HTTP server
// (whisper-server), the fallback when the hosted API is unavailable.
type WhisperServerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWhisperServerClient(baseURL string) (*WhisperServerClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("whisper-server: URL not configured")
	}
	return &WhisperServerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // transcription can be very long
		},
	}, nil
}

func (c *WhisperServerClient) Name() string {
	return "whisper-server"
}

func (c *WhisperServerClient) Transcribe(ctx context.Context, audioPath, language string) ([]subtitle.Segment, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	audioFile, err := os.Open(audioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer audioFile.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audioFile); err != nil {
		return nil, "", fmt.Errorf("copy audio data: %w", err)
	}

	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("temperature", "0.0")
	if language != "" && language != "auto" {
		writer.WriteField("language", language)
	}
	writer.Close()

	url := c.baseURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &buf)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("[whisper-server] sending request to %s (audio: %s)", url, audioPath)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("whisper server request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("whisper server error (status %d): %s", resp.StatusCode, string(body))
	}

	var serverResp struct {
		Text     string `json:"text"`
		Language string `json:"language"`
		Segments []struct {
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Text  string  `json:"text"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(body, &serverResp); err != nil {
		return nil, "", fmt.Errorf("parse whisper server response: %w", err)
	}

	if len(serverResp.Segments) == 0 {
		if strings.TrimSpace(serverResp.Text) == "" {
			return nil, serverResp.Language, nil
		}
		return []subtitle.Segment{{Start: 0, End: 0, Text: serverResp.Text}}, serverResp.Language, nil
	}

	segments := make([]subtitle.Segment, 0, len(serverResp.Segments))
	for _, s := range serverResp.Segments {
		segments = append(segments, subtitle.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return segments, serverResp.Language, nil
}
