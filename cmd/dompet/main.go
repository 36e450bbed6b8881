package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dompet/internal/amqp"
	"dompet/internal/auth"
	"dompet/internal/cli"
	apphttp "dompet/internal/http"
	"dompet/internal/log"
	"dompet/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	store, closeStore := cli.OpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	// The API keeps working without a broker: reminders are stored without
	// alarms and transactions go unmirrored until the worker queues return.
	var alarms services.AlarmPublisher
	alarmClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPAlarmQueue)
	if err != nil {
		logger.Warn("Alarm queue unavailable, reminders will not schedule alarms", log.FieldError, err)
	} else {
		defer alarmClient.Close()
		alarms = alarmClient
	}

	var backups services.BackupPublisher
	backupClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPBackupQueue)
	if err != nil {
		logger.Warn("Backup queue unavailable, transactions will not be mirrored", log.FieldError, err)
	} else {
		defer backupClient.Close()
		backups = backupClient
	}

	authService := auth.NewService(store, auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL))
	srv := apphttp.NewServer(":"+cfg.Port, store,
		authService,
		services.NewTransactionService(store, backups),
		services.NewReminderService(store, alarms),
		logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 0 // SSE connections stay open
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.SignalContext()
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting dompet server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		cli.ShutdownWithTimeout(logger, cfg.ShutdownTimeout, srv.Shutdown)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
