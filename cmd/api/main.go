package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scripture-journey/internal/config"
	"scripture-journey/internal/http"
	"scripture-journey/internal/journey"
	"scripture-journey/internal/llm"
	"scripture-journey/internal/service"
	"scripture-journey/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	recordRepo := storage.NewRecordRepo(db)
	sessionRepo := storage.NewSessionRepo(db)
	kvRepo := storage.NewKVRepo(db)

	// Build the journey and start the rebuild loop
	store := journey.NewStore(ctx,
		storage.NewJourneySource(recordRepo, sessionRepo),
		journey.NewInsightPersistence(kvRepo),
	)
	feed := journey.NewFeed()
	go store.Run(ctx, feed)
	slog.Info("Journey store ready", "items", len(store.Items()), "insights", len(store.Insights()))

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
	if !llmClient.Configured() {
		slog.Warn("LLM_API_KEY is not set; guided study requests will fail")
	}
	studyService := service.NewGuidedStudyService(llmClient, llm.ChatParams{
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})

	router := http.NewRouter(&http.Deps{
		GuidedStudyService: studyService,
		JourneyStore:       store,
		Records:            recordRepo,
		Sessions:           sessionRepo,
		Feed:               feed,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
	})

	// Start API server
	server := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("API server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", server.Addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}
