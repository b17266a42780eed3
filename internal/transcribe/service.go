package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Datle-2003/video-subtitle-generator/internal/ffmpeg"
	"github.com/Datle-2003/video-subtitle-generator/internal/job"
	"github.com/Datle-2003/video-subtitle-generator/internal/subtitle"
)

// Enqueuer is the slice of the job queue the service needs to chain a
// translation job after transcription.
type Enqueuer interface {
	Enqueue(jobType job.JobType, filePath string, params interface{}) (*job.Job, error)
}

// Service runs transcription jobs: probe, extract audio, transcribe with
// the first engine that works, merge segments, and write the SRT. Engines
// are ordered; the hosted API goes first and the local server catches its
// failures.
type Service struct {
	engines      []Transcriber
	uploadPath   string
	subtitlePath string
	maxDuration  float64 // seconds, 0 disables the cap
	queue        Enqueuer
	mergeOpts    subtitle.MergeOptions
}

func NewService(uploadPath, subtitlePath string, maxDuration float64) *Service {
	return &Service{
		uploadPath:   uploadPath,
		subtitlePath: subtitlePath,
		maxDuration:  maxDuration,
		mergeOpts:    subtitle.DefaultMergeOptions(),
	}
}

// RegisterEngine appends an engine to the failover chain.
func (s *Service) RegisterEngine(engine Transcriber) {
	s.engines = append(s.engines, engine)
	log.Printf("[transcribe] registered engine %s", engine.Name())
}

// SetQueue wires the job queue for chained translation. Set after queue
// construction to avoid a circular dependency.
func (s *Service) SetQueue(q Enqueuer) {
	s.queue = q
}

// Engines lists the registered engine names in failover order.
func (s *Service) Engines() []string {
	names := make([]string, 0, len(s.engines))
	for _, e := range s.engines {
		names = append(names, e.Name())
	}
	return names
}

// HandleJob processes a transcription job
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	if len(s.engines) == 0 {
		return fmt.Errorf("no transcription engines configured")
	}

	var params job.TranscribeParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	fullPath := filepath.Join(s.uploadPath, filepath.FromSlash(j.FilePath))
	if _, err := os.Stat(fullPath); err != nil {
		return fmt.Errorf("uploaded file not found: %s", j.FilePath)
	}

	info, err := ffmpeg.Probe(ctx, fullPath)
	if err != nil {
		return fmt.Errorf("probe video: %w", err)
	}
	if !info.HasAudio {
		return fmt.Errorf("video has no audio track")
	}
	if s.maxDuration > 0 && info.Duration > s.maxDuration {
		return fmt.Errorf("video duration %.0fs exceeds the %.0fs limit", info.Duration, s.maxDuration)
	}
	updateProgress(0.05)

	audio := newAudioCache(fullPath)
	defer audio.cleanup()

	log.Printf("[transcribe] job %s: file=%s duration=%.1fs language=%s",
		j.ID, j.FilePath, info.Duration, params.Language)

	segments, detectedLang, engineName, err := s.transcribeWithFailover(ctx, audio, params.Language, updateProgress)
	if err != nil {
		return err
	}
	if len(segments) == 0 {
		return fmt.Errorf("transcription produced no speech segments")
	}
	updateProgress(0.8)

	merged := subtitle.MergeSegments(segments, s.mergeOpts)
	srt := subtitle.RenderSRT(merged)

	outDir := filepath.Join(s.subtitlePath, j.ID)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("create subtitle dir: %w", err)
	}
	outFile := filepath.Join(outDir, "source.srt")
	if err := os.WriteFile(outFile, []byte(srt), 0644); err != nil {
		return fmt.Errorf("save subtitle: %w", err)
	}

	lang := detectedLang
	if lang == "" {
		lang = params.Language
	}
	log.Printf("[transcribe] job %s complete: %d segments merged to %d cues, language=%s engine=%s",
		j.ID, len(segments), len(merged), lang, engineName)

	result := job.TranscribeResult{
		OutputPath: filepath.ToSlash(filepath.Join(j.ID, "source.srt")),
		Language:   lang,
		Engine:     engineName,
		Duration:   info.Duration,
	}

	if params.ChainTranslate != nil {
		chainID, err := s.chainTranslate(j, result, *params.ChainTranslate)
		if err != nil {
			log.Printf("[transcribe] job %s: failed to chain translation: %v", j.ID, err)
		} else {
			result.ChainJobID = chainID
		}
	}

	resultJSON, _ := json.Marshal(result)
	j.Result = resultJSON
	updateProgress(1.0)
	return nil
}

// transcribeWithFailover tries each engine in order until one succeeds.
func (s *Service) transcribeWithFailover(ctx context.Context, audio *audioCache, language string, updateProgress func(float64)) ([]subtitle.Segment, string, string, error) {
	var lastErr error
	for i, engine := range s.engines {
		if err := ctx.Err(); err != nil {
			return nil, "", "", err
		}
		updateProgress(0.1 + 0.6*float64(i)/float64(len(s.engines)))

		audioPath, err := audio.pathFor(ctx, engine.Name())
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", engine.Name(), err)
			log.Printf("[transcribe] %v", lastErr)
			continue
		}

		segments, detected, err := engine.Transcribe(ctx, audioPath, language)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", engine.Name(), err)
			log.Printf("[transcribe] engine failed, trying next: %v", lastErr)
			continue
		}
		return segments, detected, engine.Name(), nil
	}
	return nil, "", "", fmt.Errorf("all transcription engines failed: %w", lastErr)
}

// chainTranslate enqueues the follow-up translation job.
func (s *Service) chainTranslate(j *job.Job, result job.TranscribeResult, params job.TranslateParams) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("job queue not wired")
	}

	params.SourceSRT = result.OutputPath
	params.Duration = result.Duration
	if params.SourceLang == "" {
		params.SourceLang = result.Language
	}

	chained, err := s.queue.Enqueue(job.JobTranslate, j.FilePath, params)
	if err != nil {
		return "", err
	}
	log.Printf("[transcribe] job %s: chained translation job %s (target=%s)", j.ID, chained.ID, params.TargetLang)
	return chained.ID, nil
}

// audioCache extracts audio lazily and at most once per format. The hosted
// API gets FLAC to keep uploads small; the local server wants plain WAV.
type audioCache struct {
	videoPath string
	paths     map[string]string
}

func newAudioCache(videoPath string) *audioCache {
	return &audioCache{videoPath: videoPath, paths: make(map[string]string)}
}

func (a *audioCache) pathFor(ctx context.Context, engineName string) (string, error) {
	format := "wav"
	if engineName == "groq" {
		format = "flac"
	}
	if p, ok := a.paths[format]; ok {
		return p, nil
	}

	var (
		p   string
		err error
	)
	if format == "flac" {
		p, err = ffmpeg.ExtractAudioFLAC(ctx, a.videoPath)
	} else {
		p, err = ffmpeg.ExtractAudio(ctx, a.videoPath)
	}
	if err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}
	a.paths[format] = p
	return p, nil
}

func (a *audioCache) cleanup() {
	for _, p := range a.paths {
		os.Remove(p)
	}
}
