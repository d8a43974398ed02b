// The voice-agent server mints room tokens for the browser and terminal
// clients and runs the AI side of each voice conversation against the
// Sayna platform.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/SaynaAI/examples/internal/agent"
	"github.com/SaynaAI/examples/internal/api"
	"github.com/SaynaAI/examples/internal/archive"
	"github.com/SaynaAI/examples/internal/config"
	"github.com/SaynaAI/examples/internal/handlers"
	"github.com/SaynaAI/examples/internal/history"
	"github.com/SaynaAI/examples/internal/llm"
	"github.com/SaynaAI/examples/internal/token"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Conversation history: Redis when configured, in-memory otherwise
	var store history.Store
	if cfg.RedisURL != "" {
		redisStore, err := history.NewRedisStore(ctx, cfg.RedisURL, cfg.HistoryMax)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		store = redisStore
		logger.Info().Msg("using Redis conversation history")
	} else {
		store = history.NewMemoryStore(cfg.HistoryMax)
	}

	// Transcript archive: Postgres when configured, SQLite otherwise
	var arch archive.Store
	if cfg.DatabaseURL != "" {
		pgArchive, err := archive.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		arch = pgArchive
		logger.Info().Msg("archiving transcripts to PostgreSQL")
	} else {
		sqliteArchive, err := archive.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		arch = sqliteArchive
		logger.Info().Str("path", cfg.SQLitePath).Msg("archiving transcripts to SQLite")
	}
	defer arch.Close()

	// Response generator and session manager
	llmClient := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	generator := agent.NewGenerator(llmClient, store, logger, agent.DefaultGeneratorConfig())

	minter := token.NewMinter(cfg.SaynaAPIKey, cfg.SaynaAPISecret, cfg.TokenTTL)
	manager := agent.NewManager(cfg.SaynaURL, minter, generator, store, arch, logger)

	// Create router
	h := handlers.NewHandler(logger, minter, manager, arch, cfg.SaynaURL)
	router := api.NewRouter(logger, h)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting voice-agent server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.StopAll(shutdownCtx)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
