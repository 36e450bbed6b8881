// Package cli holds the initialization steps shared by cmd/dompet,
// cmd/alarm-worker and cmd/backup-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dompet/internal/config"
	"dompet/internal/log"
	"dompet/internal/records"
	"dompet/internal/records/memory"
	"dompet/internal/storage"
)

// SetupLogger builds the process logger and installs it as the slog default
// so that package-level slog calls share the same handler.
func SetupLogger(component string) *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Component = component
	logger := log.New(cfg)
	log.SetDefault(logger)
	return logger.WithComponent(component)
}

// LoadEnvFile loads the .env file for local development. Missing files are
// fine in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, exiting the
// process on failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore builds the record store selected by DATA_BACKEND. Exits the
// process when the SQLite backend cannot be opened.
func OpenStore(logger *log.Logger, cfg *config.Config) (records.Store, func() error) {
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		logger.Info("Opened SQLite store", "path", cfg.SQLiteDBPath)
		return repo, repo.Close
	default:
		logger.Info("Using in-memory store", "backend", cfg.DataBackend)
		return memory.New(), func() error { return nil }
	}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownWithTimeout runs cleanup with an upper bound, logging when the
// bound is exceeded.
func ShutdownWithTimeout(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cleanup(ctx); err != nil {
		logger.Warn("Shutdown did not complete cleanly", log.FieldError, err)
		return
	}
	logger.Info("Shutdown complete")
}
