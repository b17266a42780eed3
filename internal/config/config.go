package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Port          int      `yaml:"port"`
	DataPath      string   `yaml:"data_path"`
	DBPath        string   `yaml:"db_path"`
	UploadPath    string   `yaml:"upload_path"`
	SubtitlePath  string   `yaml:"subtitle_path"`
	JWTSecret     string   `yaml:"jwt_secret"`
	AdminUsername string   `yaml:"admin_username"`
	AdminPassword string   `yaml:"admin_password"`
	CORSOrigins   []string `yaml:"cors_origins"`
	MaxUploadSize int64    `yaml:"max_upload_size"` // bytes

	// Transcription
	GroqAPIKey         string  `yaml:"groq_api_key"`
	GroqModel          string  `yaml:"groq_model"`
	WhisperServerURL   string  `yaml:"whisper_server_url"`
	MaxDurationSeconds float64 `yaml:"max_duration_seconds"`

	// Translation
	GeminiAPIKey            string `yaml:"gemini_api_key"`
	GeminiModel             string `yaml:"gemini_model"`
	OpenRouterAPIKey        string `yaml:"openrouter_api_key"`
	OpenRouterPriorityModel string `yaml:"openrouter_priority_model"`
	OpenRouterFallbackModel string `yaml:"openrouter_fallback_model"`
	CustomLLMURL            string `yaml:"custom_llm_url"`
	TranslateProvider       string `yaml:"translate_provider"`
	ChunkSize               int    `yaml:"chunk_size"`
	MaxRetries              int    `yaml:"max_retries"`

	Queue QueueConfig `yaml:"queue"`
}

// QueueConfig selects the job broker backend.
type QueueConfig struct {
	Backend    string `yaml:"backend"` // "memory", "redis", "rabbitmq"
	BufferSize int    `yaml:"buffer_size"`
	RedisURL   string `yaml:"redis_url"`
	AMQPURL    string `yaml:"amqp_url"`
	QueueName  string `yaml:"queue_name"`
}

// Load builds the configuration from environment variables, optionally
// overlaid on a YAML file named by CONFIG_FILE. Env vars win.
func Load() *Config {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read config file %s: %v", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("parse config file %s: %v", path, err)
		}
		log.Printf("[config] loaded %s", path)
	}

	applyEnv(cfg)

	if cfg.JWTSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		cfg.JWTSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	if cfg.DBPath == "" {
		cfg.DBPath = cfg.DataPath + "/subgen.db"
	}
	if cfg.UploadPath == "" {
		cfg.UploadPath = cfg.DataPath + "/uploads"
	}
	if cfg.SubtitlePath == "" {
		cfg.SubtitlePath = cfg.DataPath + "/subtitles"
	}

	return cfg
}

func defaults() *Config {
	return &Config{
		Port:               8080,
		DataPath:           "/data",
		AdminUsername:      "admin",
		AdminPassword:      "admin",
		CORSOrigins:        []string{"*"},
		MaxUploadSize:      2 << 30, // 2GB
		GroqModel:          "whisper-large-v3",
		MaxDurationSeconds: 1800, // 30 minutes
		GeminiModel:        "gemini-2.0-flash",
		TranslateProvider:  "gemini",
		ChunkSize:          10,
		MaxRetries:         2,
		Queue: QueueConfig{
			Backend:    "memory",
			BufferSize: 100,
			QueueName:  "subtitle_jobs",
		},
	}
}

func applyEnv(cfg *Config) {
	setInt(&cfg.Port, "PORT")
	setString(&cfg.DataPath, "DATA_PATH")
	setString(&cfg.DBPath, "DB_PATH")
	setString(&cfg.UploadPath, "UPLOAD_PATH")
	setString(&cfg.SubtitlePath, "SUBTITLE_PATH")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.AdminUsername, "ADMIN_USERNAME")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setInt64(&cfg.MaxUploadSize, "MAX_UPLOAD_SIZE")

	setString(&cfg.GroqAPIKey, "GROQ_API_KEY")
	setString(&cfg.GroqModel, "GROQ_MODEL")
	setString(&cfg.WhisperServerURL, "WHISPER_SERVER_URL")
	setFloat(&cfg.MaxDurationSeconds, "MAX_DURATION_SECONDS")

	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.OpenRouterAPIKey, "OPENROUTER_API_KEY")
	setString(&cfg.OpenRouterPriorityModel, "OPENROUTER_PRIORITY_MODEL")
	setString(&cfg.OpenRouterFallbackModel, "OPENROUTER_FALLBACK_MODEL")
	setString(&cfg.CustomLLMURL, "CUSTOM_LLM_URL")
	setString(&cfg.TranslateProvider, "TRANSLATE_PROVIDER")
	setInt(&cfg.ChunkSize, "TRANSLATE_CHUNK_SIZE")
	setInt(&cfg.MaxRetries, "TRANSLATE_MAX_RETRIES")

	setString(&cfg.Queue.Backend, "QUEUE_BACKEND")
	setInt(&cfg.Queue.BufferSize, "QUEUE_BUFFER_SIZE")
	setString(&cfg.Queue.RedisURL, "REDIS_URL")
	setString(&cfg.Queue.AMQPURL, "AMQP_URL")
	setString(&cfg.Queue.QueueName, "QUEUE_NAME")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		cfg.CORSOrigins = cfg.CORSOrigins[:0]
		for _, o := range origins {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	switch c.Queue.Backend {
	case "memory":
	case "redis":
		if c.Queue.RedisURL == "" {
			return fmt.Errorf("queue backend redis requires redis_url")
		}
	case "rabbitmq":
		if c.Queue.AMQPURL == "" {
			return fmt.Errorf("queue backend rabbitmq requires amqp_url")
		}
	default:
		return fmt.Errorf("unknown queue backend %q", c.Queue.Backend)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
