package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/relaylabs/chatrelay/internal/agent"
	"github.com/relaylabs/chatrelay/internal/api"
	"github.com/relaylabs/chatrelay/internal/broadcast"
	"github.com/relaylabs/chatrelay/internal/config"
	"github.com/relaylabs/chatrelay/internal/handlers"
	"github.com/relaylabs/chatrelay/internal/hub"
	"github.com/relaylabs/chatrelay/internal/relay"
	"github.com/relaylabs/chatrelay/internal/store"
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

	// Initialize the message store: SQLite by default, PostgreSQL when
	// DATABASE_URL is set. Schema creation is idempotent.
	var msgStore store.MessageStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		msgStore = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.DBPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		msgStore = sqliteStore
		logger.Info().Str("path", cfg.DBPath).Msg("opened SQLite store")
	}
	defer msgStore.Close()

	// Optional Redis presence tracking
	var presence *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		presence, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer presence.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Relay, membership registry, and the two background consumers. All
	// live for the process lifetime.
	rel := relay.New()
	rooms := hub.New(presence, logger)
	responder := agent.New(cfg.AgentName, rel, logger)
	broadcaster := broadcast.New(msgStore, rooms, rel, logger)

	loopCtx, stopLoops := context.WithCancel(ctx)
	defer stopLoops()
	go responder.Run(loopCtx)
	go broadcaster.Run(loopCtx)

	// Create router
	handler := handlers.NewHandler(msgStore, rel, rooms, presence, cfg.HistoryLimit, logger)
	router := api.NewRouter(logger, handler)

	// Create server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting chatrelay server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Stop accepting new work: the responder and broadcaster drain is best
	// effort, not guaranteed.
	rel.Close()
	stopLoops()

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
