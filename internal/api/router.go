package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Datle-2003/video-subtitle-generator/internal/api/handlers"
	"github.com/Datle-2003/video-subtitle-generator/internal/api/middleware"
	"github.com/Datle-2003/video-subtitle-generator/internal/auth"
	"github.com/Datle-2003/video-subtitle-generator/internal/config"
	"github.com/Datle-2003/video-subtitle-generator/internal/db"
	"github.com/Datle-2003/video-subtitle-generator/internal/job"
)

// RouterDeps collects everything the HTTP layer needs.
type RouterDeps struct {
	Database   *db.Database
	JWTService *auth.JWTService
	Config     *config.Config
	Queue      *job.JobQueue
	Providers  []string // registered translation providers
	Engines    []string // registered transcription engines
}

func NewRouter(deps RouterDeps) *chi.Mux {
	cfg := deps.Config

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger)
	r.Use(cors.Handler(middleware.CORSHandler(cfg.CORSOrigins)))

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Database, deps.JWTService)
	subtitleHandler := handlers.NewSubtitleHandler(
		cfg.UploadPath, cfg.SubtitlePath, deps.Queue, cfg.MaxUploadSize, cfg.MaxDurationSeconds)
	jobHandler := handlers.NewJobHandler(deps.Queue)
	languageHandler := handlers.NewLanguageHandler(deps.Providers, deps.Engines)

	// Uploads are heavyweight; keep bursts per client in check.
	uploadLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api", func(r chi.Router) {
		// Public
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/languages", languageHandler.List)
		r.With(middleware.MaxBodySize(middleware.JSONBodyLimit)).Post("/auth/login", authHandler.Login)

		// Protected
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(deps.JWTService))

			r.Get("/auth/me", authHandler.Me)

			r.With(uploadLimiter.Handler).Post("/subtitle/generate", subtitleHandler.Generate)
			r.Get("/subtitle/download/{id}/{kind}", subtitleHandler.Download)

			r.Get("/jobs", jobHandler.ListJobs)
			r.Get("/jobs/{id}", jobHandler.GetJob)
			r.Delete("/jobs/{id}", jobHandler.CancelJob)
			r.With(middleware.MaxBodySize(middleware.JSONBodyLimit)).Post("/jobs/{id}/retry", jobHandler.RetryJob)
		})
	})

	return r
}
