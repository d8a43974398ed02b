package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the voice-agent server.
type Config struct {
	Port string
	Env  string

	// Sayna platform
	SaynaURL       string // base URL of the Sayna deployment (http(s)://...)
	SaynaAPIKey    string
	SaynaAPISecret string

	// LLM backend (OpenAI-compatible chat completions API)
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// Conversation history
	HistoryMax int    // per-room message cap
	RedisURL   string // optional Redis-backed history

	// Transcript archive
	DatabaseURL string // optional Postgres archive
	SQLitePath  string // SQLite archive path when no DATABASE_URL

	// Access tokens
	TokenTTL time.Duration
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		SaynaURL:       os.Getenv("SAYNA_URL"),
		SaynaAPIKey:    os.Getenv("SAYNA_API_KEY"),
		SaynaAPISecret: os.Getenv("SAYNA_API_SECRET"),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:      os.Getenv("LLM_API_KEY"),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		HistoryMax:     getEnvInt("HISTORY_MAX", 100),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/transcripts.db"),
		TokenTTL:       getEnvDuration("TOKEN_TTL", time.Hour),
	}

	// In production, require platform and model credentials
	if cfg.Env == "production" {
		if cfg.SaynaURL == "" {
			panic("SAYNA_URL is required in production")
		}
		if cfg.SaynaAPIKey == "" || cfg.SaynaAPISecret == "" {
			panic("SAYNA_API_KEY and SAYNA_API_SECRET are required in production")
		}
		if cfg.LLMAPIKey == "" {
			panic("LLM_API_KEY is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
