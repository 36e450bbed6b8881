package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/records"
)

const alarmTitle = "Bill reminder"

// AlarmPublisher schedules one local notification after a delay. Implemented
// by the AMQP client; nil disables alarms.
type AlarmPublisher interface {
	PublishAlarmRequest(ctx context.Context, req *amqp.AlarmRequest) error
}

// AlarmOutcome reports what happened to the alarm side effect of a reminder
// creation. The reminder itself is stored regardless; Err carries a publish
// failure so the caller can decide whether to tell the user.
type AlarmOutcome struct {
	FireAt time.Time
	Delay  time.Duration
	Err    error
}

// Scheduled reports whether the alarm request was handed off.
func (o AlarmOutcome) Scheduled() bool { return o.Err == nil }

// ReminderService stores reminders and schedules their one-shot alarms.
type ReminderService struct {
	store  records.ReminderStore
	alarms AlarmPublisher
	now    func() time.Time
}

func NewReminderService(store records.ReminderStore, alarms AlarmPublisher) *ReminderService {
	return &ReminderService{store: store, alarms: alarms, now: time.Now}
}

// Create stores the reminder and emits exactly one alarm request for its
// next occurrence. The alarm publish is not retried and its delivery is
// never confirmed; the store write is the only operation that can fail the
// call.
func (s *ReminderService) Create(ctx context.Context, r core.Reminder) (core.Reminder, AlarmOutcome, error) {
	if err := r.Validate(); err != nil {
		return core.Reminder{}, AlarmOutcome{}, err
	}

	stored, err := s.store.AppendReminder(ctx, r)
	if err != nil {
		return core.Reminder{}, AlarmOutcome{}, fmt.Errorf("store reminder: %w", err)
	}

	fireAt, delay := NextOccurrence(stored.DayOfMonth, s.now())
	outcome := AlarmOutcome{FireAt: fireAt, Delay: delay}

	if s.alarms == nil {
		outcome.Err = fmt.Errorf("alarm publisher not available")
		slog.WarnContext(ctx, "Alarm publisher not available, reminder stored without alarm",
			"reminder_id", stored.ID)
		return stored, outcome, nil
	}

	req := amqp.NewAlarmRequest(
		alarmTitle,
		fmt.Sprintf("Don't forget to pay %s as scheduled (amount: %d)", stored.Title, stored.Amount.Cents),
		int64(delay/time.Second),
	)
	if err := s.alarms.PublishAlarmRequest(ctx, req); err != nil {
		// The reminder is already stored; surface the failure without
		// rolling anything back.
		outcome.Err = err
		slog.ErrorContext(ctx, "Failed to publish alarm request",
			"reminder_id", stored.ID,
			"error", err)
	}

	return stored, outcome, nil
}

// Delete removes the reminder. Any alarm already scheduled for it is left
// armed: there is no cancellation id to revoke it with.
func (s *ReminderService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteReminder(ctx, userID, id); err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

// List returns the user's reminders annotated with urgency for today.
func (s *ReminderService) List(ctx context.Context, userID string) ([]ReminderView, error) {
	items, err := s.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	return AnnotateReminders(items, s.now()), nil
}
