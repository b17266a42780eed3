package transcribe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func tempAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(path, []byte("RIFFfake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestWhisperServerTranscribe(t *testing.T) {
	var gotFormat, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotFormat = r.FormValue("response_format")
		gotLanguage = r.FormValue("language")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"text":     "hello world",
			"language": "en",
			"segments": []map[string]interface{}{
				{"start": 0.0, "end": 1.5, "text": " hello"},
				{"start": 1.5, "end": 3.0, "text": " world"},
			},
		})
	}))
	defer server.Close()

	client, err := NewWhisperServerClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}

	segments, lang, err := client.Transcribe(context.Background(), tempAudioFile(t), "en")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotFormat != "verbose_json" {
		t.Errorf("response_format = %q, want verbose_json", gotFormat)
	}
	if gotLanguage != "en" {
		t.Errorf("language field = %q, want en", gotLanguage)
	}
	if lang != "en" {
		t.Errorf("detected language = %q, want en", lang)
	}
	if len(segments) != 2 || segments[1].End != 3.0 {
		t.Fatalf("unexpected segments: %+v", segments)
	}
}

func TestWhisperServerAutoLanguageOmitted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Error("language field must be omitted for auto-detect")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"text": "hi", "language": "ko"})
	}))
	defer server.Close()

	client, _ := NewWhisperServerClient(server.URL)
	segments, lang, err := client.Transcribe(context.Background(), tempAudioFile(t), "auto")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if lang != "ko" {
		t.Errorf("detected language = %q, want ko", lang)
	}
	if len(segments) != 1 || segments[0].Text != "hi" {
		t.Fatalf("expected single whole-text segment, got %+v", segments)
	}
}

func TestWhisperServerErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := NewWhisperServerClient(server.URL)
	if _, _, err := client.Transcribe(context.Background(), tempAudioFile(t), ""); err == nil {
		t.Fatal("expected error on server failure")
	}
}

func TestNewWhisperServerClientRequiresURL(t *testing.T) {
	if _, err := NewWhisperServerClient(""); err == nil {
		t.Fatal("expected error for empty URL")
	}
}
