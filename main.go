package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Datle-2003/video-subtitle-generator/internal/api"
	"github.com/Datle-2003/video-subtitle-generator/internal/auth"
	"github.com/Datle-2003/video-subtitle-generator/internal/broker"
	"github.com/Datle-2003/video-subtitle-generator/internal/config"
	"github.com/Datle-2003/video-subtitle-generator/internal/db"
	"github.com/Datle-2003/video-subtitle-generator/internal/job"
	"github.com/Datle-2003/video-subtitle-generator/internal/transcribe"
	"github.com/Datle-2003/video-subtitle-generator/internal/translate"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	for _, dir := range []string{cfg.DataPath, cfg.UploadPath, cfg.SubtitlePath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Services
	transcribeService := transcribe.NewService(cfg.UploadPath, cfg.SubtitlePath, cfg.MaxDurationSeconds)
	if cfg.GroqAPIKey != "" {
		groq, err := transcribe.NewGroqClient(cfg.GroqAPIKey, cfg.GroqModel)
		if err != nil {
			log.Fatalf("Failed to configure Groq client: %v", err)
		}
		transcribeService.RegisterEngine(groq)
	}
	if cfg.WhisperServerURL != "" {
		ws, err := transcribe.NewWhisperServerClient(cfg.WhisperServerURL)
		if err != nil {
			log.Fatalf("Failed to configure whisper-server client: %v", err)
		}
		transcribeService.RegisterEngine(ws)
	}
	if len(transcribeService.Engines()) == 0 {
		log.Fatal("No transcription engine configured: set GROQ_API_KEY or WHISPER_SERVER_URL")
	}

	translateService := translate.NewService(cfg.SubtitlePath, cfg.TranslateProvider, cfg.ChunkSize, cfg.MaxRetries)
	if cfg.GeminiAPIKey != "" {
		gemini, err := translate.NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to configure Gemini provider: %v", err)
		}
		translateService.Register(gemini)
	}
	if cfg.OpenRouterAPIKey != "" {
		openRouter, err := translate.NewOpenRouterProvider(
			cfg.OpenRouterAPIKey, cfg.OpenRouterPriorityModel, cfg.OpenRouterFallbackModel)
		if err != nil {
			log.Fatalf("Failed to configure OpenRouter provider: %v", err)
		}
		translateService.Register(openRouter)
	}
	if cfg.CustomLLMURL != "" {
		selfHosted, err := translate.NewSelfHostedProvider(cfg.CustomLLMURL)
		if err != nil {
			log.Fatalf("Failed to configure self-hosted provider: %v", err)
		}
		translateService.Register(selfHosted)
	}
	if len(translateService.Providers()) == 0 {
		log.Fatal("No translation provider configured: set GEMINI_API_KEY, OPENROUTER_API_KEY or CUSTOM_LLM_URL")
	}

	// Job queue
	jobBroker, err := broker.New(cfg.Queue)
	if err != nil {
		log.Fatalf("Failed to create job broker: %v", err)
	}
	log.Printf("Job broker: %s", cfg.Queue.Backend)

	queue, err := job.NewJobQueue(database.DB(), jobBroker)
	if err != nil {
		log.Fatalf("Failed to start job queue: %v", err)
	}
	queue.RegisterHandler(job.JobTranscribe, transcribeService.HandleJob)
	queue.RegisterHandler(job.JobTranslate, translateService.HandleJob)
	transcribeService.SetQueue(queue)

	router := api.NewRouter(api.RouterDeps{
		Database:   database,
		JWTService: jwtService,
		Config:     cfg,
		Queue:      queue,
		Providers:  translateService.Providers(),
		Engines:    transcribeService.Engines(),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: router}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		queue.Stop()
	}()

	log.Printf("Starting server on %s", addr)
	log.Printf("Upload path: %s, subtitle path: %s", cfg.UploadPath, cfg.SubtitlePath)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
