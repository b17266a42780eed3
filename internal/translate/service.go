package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Datle-2003/video-subtitle-generator/internal/job"
	"github.com/Datle-2003/video-subtitle-generator/internal/lang"
)

// Service manages translation providers and processes translation jobs
type Service struct {
	providers       map[string]Provider
	subtitlePath    string
	defaultProvider string
	chunkSize       int
	maxRetries      int
}

// NewService creates a translation service. Providers are registered
// separately so the caller controls which credentials enable what.
func NewService(subtitlePath, defaultProvider string, chunkSize, maxRetries int) *Service {
	return &Service{
		providers:       make(map[string]Provider),
		subtitlePath:    subtitlePath,
		defaultProvider: defaultProvider,
		chunkSize:       chunkSize,
		maxRetries:      maxRetries,
	}
}

// Register adds a provider to the registry.
func (s *Service) Register(p Provider) {
	s.providers[p.Name()] = p
	log.Printf("[translate] registered provider %s", p.Name())
}

// Providers lists the registered provider names.
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// HandleJob processes a translation job
func (s *Service) HandleJob(ctx context.Context, j *job.Job, updateProgress func(float64)) error {
	var params job.TranslateParams
	if err := json.Unmarshal(j.Params, &params); err != nil {
		return fmt.Errorf("unmarshal params: %w", err)
	}

	providerName := params.Provider
	if providerName == "" {
		providerName = s.defaultProvider
	}
	provider, ok := s.providers[providerName]
	if !ok {
		return fmt.Errorf("unknown translation provider: %s", providerName)
	}

	srcPath := filepath.Join(s.subtitlePath, filepath.FromSlash(params.SourceSRT))
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source subtitle: %w", err)
	}

	opts := DefaultOptions(params.TargetLang)
	opts.SourceLanguage = params.SourceLang
	if s.chunkSize > 0 {
		opts.ChunkSize = s.chunkSize
	}
	if s.maxRetries >= 0 {
		opts.MaxRetries = s.maxRetries
	}
	opts.Metadata = buildMetadata(j.FilePath, params)
	opts.Progress = func(done, total int) {
		if total > 0 {
			updateProgress(float64(done) / float64(total))
		}
	}

	log.Printf("[translate] job %s: %s -> %s via %s", j.ID, params.SourceSRT, params.TargetLang, providerName)

	translated, err := NewTranslator(provider).TranslateDocument(ctx, string(data), opts)
	if err != nil {
		return fmt.Errorf("translate document: %w", err)
	}

	code := lang.Code(params.TargetLang)
	outName := fmt.Sprintf("translated_%s.srt", code)
	outPath := filepath.Join(filepath.Dir(srcPath), outName)
	if err := os.WriteFile(outPath, []byte(translated), 0644); err != nil {
		return fmt.Errorf("save translated subtitle: %w", err)
	}

	relOut := filepath.ToSlash(filepath.Join(filepath.Dir(filepath.FromSlash(params.SourceSRT)), outName))
	resultJSON, _ := json.Marshal(job.TranslateResult{
		OutputPath: relOut,
		Provider:   providerName,
		TargetLang: params.TargetLang,
	})
	j.Result = resultJSON

	log.Printf("[translate] job %s complete: %s", j.ID, outPath)
	updateProgress(1.0)
	return nil
}

// buildMetadata assembles the prompt context from the job.
func buildMetadata(filePath string, params job.TranslateParams) map[string]string {
	md := make(map[string]string)
	if filePath != "" {
		md["title"] = titleFromFilename(filepath.Base(filePath))
	}
	if params.Duration > 0 {
		md["duration"] = fmt.Sprintf("%.0f seconds", params.Duration)
	}
	if params.Context != "" {
		md["description"] = params.Context
	}
	return md
}

// titleFromFilename strips the upload UUID prefix and extension from a
// stored filename, e.g. "3f2a..._my_talk.mp4" -> "my_talk".
func titleFromFilename(name string) string {
	name = name[:len(name)-len(filepath.Ext(name))]
	if i := indexAfterUUID(name); i > 0 {
		name = name[i:]
	}
	return name
}

func indexAfterUUID(name string) int {
	// uuid + "_" prefix is 37 bytes
	if len(name) > 37 && name[36] == '_' {
		return 37
	}
	return 0
}
