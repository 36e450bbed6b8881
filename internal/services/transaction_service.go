package services

import (
	"context"
	"fmt"
	"log/slog"

	"dompet/internal/amqp"
	"dompet/internal/core"
	"dompet/internal/records"
)

// BackupPublisher hands transactions to the backup pipeline. Implemented by
// the AMQP client; nil disables backups.
type BackupPublisher interface {
	PublishBackup(ctx context.Context, msg *amqp.BackupMessage) error
}

// TransactionService stores transactions and mirrors them to the backup
// queue best-effort.
type TransactionService struct {
	store  records.TransactionStore
	backup BackupPublisher
}

func NewTransactionService(store records.TransactionStore, backup BackupPublisher) *TransactionService {
	return &TransactionService{store: store, backup: backup}
}

// Create validates and stores the transaction. The backup publish failing
// never fails the call: the local store is authoritative.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := s.store.AppendTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("store transaction: %w", err)
	}

	s.publishBackup(ctx, stored.ID, stored.UserID, amqp.BackupActionSync)
	return stored, nil
}

// Delete removes the transaction; its contribution disappears from totals on
// the next recomputation.
func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishBackup(ctx, id, userID, amqp.BackupActionDelete)
	return nil
}

// List returns the user's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, userID string) ([]core.Transaction, error) {
	items, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}

func (s *TransactionService) publishBackup(ctx context.Context, id, userID, action string) {
	if s.backup == nil {
		slog.DebugContext(ctx, "Backup publisher not available, skipping", "transaction_id", id)
		return
	}
	if err := s.backup.PublishBackup(ctx, amqp.NewBackupMessage(id, userID, action)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish backup message",
			"transaction_id", id,
			"action", action,
			"error", err)
	}
}
