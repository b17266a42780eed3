package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Datle-2003/video-subtitle-generator/internal/ffmpeg"
	"github.com/Datle-2003/video-subtitle-generator/internal/job"
	"github.com/Datle-2003/video-subtitle-generator/internal/lang"
)

var allowedVideoExts = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".webm": true,
	".m4v":  true,
	".ts":   true,
}

type SubtitleHandler struct {
	uploadPath    string
	subtitlePath  string
	queue         *job.JobQueue
	maxUploadSize int64
	maxDuration   float64
}

func NewSubtitleHandler(uploadPath, subtitlePath string, queue *job.JobQueue, maxUploadSize int64, maxDuration float64) *SubtitleHandler {
	return &SubtitleHandler{
		uploadPath:    uploadPath,
		subtitlePath:  subtitlePath,
		queue:         queue,
		maxUploadSize: maxUploadSize,
		maxDuration:   maxDuration,
	}
}

// Generate accepts a video upload and enqueues the transcribe+translate
// chain. Responds 202 with the transcription job.
func (h *SubtitleHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid or oversized upload: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		jsonError(w, "missing video file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedVideoExts[ext] {
		jsonError(w, fmt.Sprintf("unsupported video format %q", ext), http.StatusBadRequest)
		return
	}

	targetLang := lang.Name(r.FormValue("target_lang"))
	if targetLang == "" {
		jsonError(w, "unknown or missing target_lang", http.StatusBadRequest)
		return
	}

	sourceLang := strings.TrimSpace(r.FormValue("source_lang"))
	if sourceLang == "" {
		sourceLang = "auto"
	} else if sourceLang != "auto" {
		if lang.Name(sourceLang) == "" {
			jsonError(w, "unknown source_lang", http.StatusBadRequest)
			return
		}
		sourceLang = lang.Code(sourceLang)
	}

	storedName := uuid.New().String() + "_" + sanitizeFilename(header.Filename)
	fullPath := filepath.Join(h.uploadPath, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(fullPath)
		jsonError(w, "failed to store upload", http.StatusInternalServerError)
		return
	}
	dst.Close()

	if h.maxDuration > 0 {
		duration, err := ffmpeg.Duration(r.Context(), fullPath)
		if err != nil {
			os.Remove(fullPath)
			jsonError(w, "could not read video metadata: "+err.Error(), http.StatusBadRequest)
			return
		}
		if duration > h.maxDuration {
			os.Remove(fullPath)
			jsonError(w, fmt.Sprintf("video duration %.0fs exceeds the %.0fs limit", duration, h.maxDuration), http.StatusBadRequest)
			return
		}
	}

	params := job.TranscribeParams{
		Language: sourceLang,
		ChainTranslate: &job.TranslateParams{
			TargetLang: targetLang,
			SourceLang: sourceLang,
			Provider:   strings.TrimSpace(r.FormValue("provider")),
			Context:    strings.TrimSpace(r.FormValue("context")),
		},
	}

	j, err := h.queue.Enqueue(job.JobTranscribe, storedName, params)
	if err != nil {
		os.Remove(fullPath)
		jsonError(w, "failed to enqueue job: "+err.Error(), http.StatusInternalServerError)
		return
	}

	jsonResponse(w, j, http.StatusAccepted)
}

// Download serves a generated subtitle file. kind is "source" for the
// transcription SRT or "translated" for the translation output.
func (h *SubtitleHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")

	j, err := h.queue.GetJob(id)
	if err != nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	dir, err := h.subtitleDir(j)
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}

	var path string
	switch kind {
	case "source":
		path = filepath.Join(dir, "source.srt")
	case "translated":
		path, err = h.findTranslated(j, dir)
		if err != nil {
			jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
	default:
		jsonError(w, "kind must be source or translated", http.StatusBadRequest)
		return
	}

	if _, err := os.Stat(path); err != nil {
		jsonError(w, "subtitle not generated yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/x-subrip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// subtitleDir resolves the per-job subtitle directory. Transcription jobs
// own a directory named after their ID; translation jobs share the
// directory of their source SRT.
func (h *SubtitleHandler) subtitleDir(j *job.Job) (string, error) {
	switch j.Type {
	case job.JobTranscribe:
		return filepath.Join(h.subtitlePath, j.ID), nil
	case job.JobTranslate:
		var params job.TranslateParams
		if err := json.Unmarshal(j.Params, &params); err != nil || params.SourceSRT == "" {
			return "", fmt.Errorf("translation job has no source subtitle")
		}
		return filepath.Join(h.subtitlePath, filepath.Dir(filepath.FromSlash(params.SourceSRT))), nil
	default:
		return "", fmt.Errorf("unknown job type %s", j.Type)
	}
}

// findTranslated locates the translated SRT, preferring the exact path
// recorded in a completed translation result.
func (h *SubtitleHandler) findTranslated(j *job.Job, dir string) (string, error) {
	if j.Type == job.JobTranslate && len(j.Result) > 0 {
		var result job.TranslateResult
		if err := json.Unmarshal(j.Result, &result); err == nil && result.OutputPath != "" {
			return filepath.Join(h.subtitlePath, filepath.FromSlash(result.OutputPath)), nil
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "translated_*.srt"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("no translated subtitle available")
	}
	return matches[0], nil
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || b.String() == strings.Repeat("_", b.Len()) {
		return "upload" + filepath.Ext(name)
	}
	return b.String()
}
