package job

import (
	"context"
	"encoding/json"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobTranscribe JobType = "transcribe"
	JobTranslate  JobType = "translate"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Job represents a queued task (subtitle generation or translation)
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	FilePath    string          `json:"file_path"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// TranscribeParams are parameters for a transcription job. FilePath on the
// job points at the uploaded video.
type TranscribeParams struct {
	Language       string           `json:"language"`                  // "auto", "en", "vi", etc.
	ChainTranslate *TranslateParams `json:"chain_translate,omitempty"` // auto-translate after transcribe completes
}

// TranslateParams are parameters for a translation job
type TranslateParams struct {
	SourceSRT  string  `json:"source_srt"`        // subtitle path relative to the subtitle root
	TargetLang string  `json:"target_lang"`       // English language name, e.g. "Vietnamese"
	SourceLang string  `json:"source_lang"`       // "auto" or a detected language code
	Provider   string  `json:"provider"`          // "gemini", "openrouter", "selfhosted"
	Context    string  `json:"context,omitempty"` // optional video description for the prompt
	Duration   float64 `json:"duration,omitempty"`
}

// TranscribeResult is the output of a successful transcription
type TranscribeResult struct {
	OutputPath string  `json:"output_path"` // relative path to the generated SRT
	Language   string  `json:"language"`    // detected or specified language
	Engine     string  `json:"engine"`      // transcription engine that produced the result
	Duration   float64 `json:"duration"`    // media duration in seconds
	ChainJobID string  `json:"chain_job_id,omitempty"`
}

// TranslateResult is the output of a successful translation
type TranslateResult struct {
	OutputPath string `json:"output_path"` // relative path to the translated SRT
	Provider   string `json:"provider"`    // translation provider that produced the result
	TargetLang string `json:"target_lang"`
}

// JobHandler processes a job. Implementations are provided by the
// transcribe/translate services.
type JobHandler func(ctx context.Context, job *Job, updateProgress func(float64)) error
