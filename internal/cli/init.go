// Package cli provides common CLI initialization utilities.
// This package consolidates repeated initialization patterns across
// cmd/happymoney and cmd/happymoney-stats.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"happymoney/internal/api"
	"happymoney/internal/config"
	"happymoney/internal/mirror"
)

// SetupLogger initializes structured logging with default settings.
// Returns the configured logger and sets it as the default logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitClient builds the API client from configuration.
// Returns the client or exits the process on failure.
func InitClient(logger *slog.Logger, cfg *config.Config) *api.Client {
	client, err := api.NewClient(cfg.APIBaseURL, api.Options{
		Timeout:        cfg.HTTPTimeout,
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		CacheTTL:       cfg.CacheTTL,
		CacheSize:      cfg.CacheSize,
	})
	if err != nil {
		logger.Error("Failed to initialize API client", "error", err, "base_url", cfg.APIBaseURL)
		os.Exit(1)
	}
	return client
}

// InitMirror initializes the conversation mirror store.
// Returns the store or exits the process on failure.
func InitMirror(logger *slog.Logger, cfg *config.Config) mirror.Store {
	store, err := mirror.New(cfg.MirrorBackend, cfg.MirrorDBPath)
	if err != nil {
		logger.Error("Failed to initialize conversation mirror", "error", err,
			"backend", cfg.MirrorBackend, "path", cfg.MirrorDBPath)
		os.Exit(1)
	}
	return store
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		if cleanup != nil {
			cleanup()
		}

		cancel()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-time.After(2 * time.Second):
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
