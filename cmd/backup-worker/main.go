package main

import (
	"context"
	"errors"
	"os"

	"dompet/internal/amqp"
	"dompet/internal/backup"
	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/storage"
	"dompet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentBackup)
	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateBackup(); err != nil {
		logger.Error("Backup configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// The worker reads mirrored transactions straight from storage, so it
	// always runs against SQLite regardless of the API's DATA_BACKEND.
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := cli.SignalContext()
	defer stop()

	mirror, err := backup.NewGoogleClient(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets mirror initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	backupWorker := worker.NewBackupWorker(repo, mirror)

	logger.Info("Starting backup worker", "queue", cfg.AMQPBackupQueue)
	err = amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPBackupQueue,
		func(ctx context.Context, c *amqp.Client) error {
			return c.ConsumeBackups(ctx, func(msg *amqp.BackupMessage) error {
				return backupWorker.HandleBackupMessage(ctx, msg)
			})
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Backup consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Backup worker stopped")
}
