package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/testgen/internal/api"
	"github.com/dgallion1/testgen/internal/config"
	"github.com/dgallion1/testgen/internal/refdoc"
	"github.com/dgallion1/testgen/internal/testgen"
)

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gemini, err := testgen.NewClient(ctx, testgen.ClientConfig{
		APIKey:        cfg.GeminiAPIKey,
		UseVertex:     cfg.UseVertex,
		Project:       cfg.Project,
		Location:      cfg.Location,
		Model:         cfg.Model,
		FallbackModel: cfg.FallbackModel,
		MaxRetries:    cfg.MaxRetries,
		Timeout:       cfg.LLMTimeout,
	}, log.With("component", "gemini"))
	if err != nil {
		log.Error("failed to create gemini client", "error", err)
		os.Exit(1)
	}

	svc := testgen.NewService(gemini, testgen.ServiceConfig{
		Profile:         testgen.Profile(cfg.PromptProfile),
		Temperature:     cfg.Temperature,
		TopP:            cfg.TopP,
		MaxOutputTokens: int32(cfg.MaxOutputTokens),
		MaxConcurrent:   cfg.MaxConcurrent,
		AttachmentLimits: refdoc.Limits{
			MaxBytes:  cfg.MaxAttachmentBytes,
			MaxTokens: cfg.MaxAttachmentTokens,
		},
	}, log.With("component", "testgen"))

	srv := api.NewServer(svc, gemini.Stats, log.With("component", "api"), cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting testgen", "port", cfg.Port, "model", cfg.Model, "profile", cfg.PromptProfile)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
