package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dompet/internal/amqp"
)

// Notification is what an armed alarm delivers when it fires.
type Notification struct {
	Title string
	Body  string
}

// Notifier delivers a fired alarm to the user-facing channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes fired alarms to the log. It stands in where no push
// channel is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	slog.InfoContext(ctx, "ALARM", "title", n.Title, "body", n.Body)
	return nil
}

// AlarmWorker arms an in-process one-shot timer per alarm request. Requests
// are acked on arming, not on firing: delivery is fire-and-forget, and armed
// alarms that have not fired by shutdown are lost.
type AlarmWorker struct {
	notifier Notifier

	mu      sync.Mutex
	pending int
	wg      sync.WaitGroup
}

func NewAlarmWorker(notifier Notifier) *AlarmWorker {
	return &AlarmWorker{notifier: notifier}
}

// HandleAlarmRequest arms the alarm and returns immediately. A non-positive
// delay fires at once.
func (w *AlarmWorker) HandleAlarmRequest(ctx context.Context, req *amqp.AlarmRequest) error {
	delay := time.Duration(req.DelaySeconds) * time.Second

	slog.InfoContext(ctx, "Arming alarm",
		"title", req.Title,
		"delay_seconds", req.DelaySeconds)

	w.mu.Lock()
	w.pending++
	w.mu.Unlock()

	w.wg.Add(1)
	go w.fireAfter(ctx, delay, Notification{Title: req.Title, Body: req.Body})
	return nil
}

func (w *AlarmWorker) fireAfter(ctx context.Context, delay time.Duration, n Notification) {
	defer w.wg.Done()
	defer func() {
		w.mu.Lock()
		w.pending--
		w.mu.Unlock()
	}()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		slog.InfoContext(ctx, "Dropping armed alarm on shutdown", "title", n.Title)
		return
	}

	if err := w.notifier.Notify(ctx, n); err != nil {
		slog.ErrorContext(ctx, "Failed to deliver alarm notification",
			"title", n.Title,
			"error", err)
	}
}

// Pending returns the number of armed alarms that have not fired yet.
func (w *AlarmWorker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Wait blocks until all armed alarms have either fired or been dropped.
func (w *AlarmWorker) Wait() {
	w.wg.Wait()
}
