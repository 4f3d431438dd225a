package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shiritori/internal/analyzer"
	"shiritori/internal/app"
	"shiritori/internal/config"
	"shiritori/internal/domain"
	httpTransport "shiritori/internal/transport/http"
)

//go:embed web/*
var webFS embed.FS

func main() {
	// Load .env if present; variables already in the environment win
	dotenvErr := godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Set up logger
	var logger *slog.Logger
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	if cfg.Logging.Format == "json" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, logOpts))
	}

	slog.SetDefault(logger)

	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		logger.Warn("failed to load .env file", "error", dotenvErr)
	}

	logger.Info("starting shiritori server",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"analyzerMode", cfg.Analyzer.Mode,
	)

	// Load the morphological analyzer (dictionary load takes a moment)
	morph, err := analyzer.New(analyzer.Mode(cfg.Analyzer.Mode), logger)
	if err != nil {
		logger.Error("failed to load analyzer", "error", err)
		os.Exit(1)
	}

	// Create game hub
	hub := app.NewGameHub(app.HubConfig{
		Settings: domain.GameSettings{
			StartingWord: cfg.Game.StartingWord,
			SuccessDelay: cfg.Game.SuccessDelay,
			FailureDelay: cfg.Game.FailureDelay,
		},
		MaxSessions:  cfg.Game.MaxSessions,
		StaleTimeout: cfg.Game.StaleSessionTimeout,
	}, morph, logger)
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, morph, logger, webFS)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
