package main

import (
	"context"
	"errors"

	"dompet/internal/amqp"
	"dompet/internal/cli"
	"dompet/internal/log"
	"dompet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	alarmWorker := worker.NewAlarmWorker(worker.LogNotifier{})

	logger.Info("Starting alarm worker", "queue", cfg.AMQPAlarmQueue)
	err := amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPAlarmQueue,
		func(ctx context.Context, c *amqp.Client) error {
			return c.ConsumeAlarmRequests(ctx, func(req *amqp.AlarmRequest) error {
				return alarmWorker.HandleAlarmRequest(ctx, req)
			})
		})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Alarm consumption failed", log.FieldError, err)
	}

	// Armed alarms do not survive the process; report what gets dropped.
	if pending := alarmWorker.Pending(); pending > 0 {
		logger.Warn("Shutting down with armed alarms, they will be lost", "pending", pending)
	}
	logger.Info("Alarm worker stopped")
}
