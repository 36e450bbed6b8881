// Package worker holds the queue consumers behind the two worker binaries:
// the alarm worker that fires reminder notifications after their delay, and
// the backup worker that mirrors transactions to the spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dompet/internal/amqp"
	"dompet/internal/backup"
	"dompet/internal/core"
	"dompet/internal/records"
)

// TransactionGetter resolves a queue message's transaction id to the stored
// record. Implemented by the SQLite repository.
type TransactionGetter interface {
	GetTransaction(ctx context.Context, id string) (core.Transaction, error)
}

// BackupWorker applies backup queue messages to the mirror.
type BackupWorker struct {
	source TransactionGetter
	mirror backup.TransactionMirror
}

func NewBackupWorker(source TransactionGetter, mirror backup.TransactionMirror) *BackupWorker {
	return &BackupWorker{source: source, mirror: mirror}
}

// HandleBackupMessage processes a single message. Sync messages for
// transactions that have since been deleted locally fall through to a
// removal, so the mirror converges either way.
func (w *BackupWorker) HandleBackupMessage(ctx context.Context, msg *amqp.BackupMessage) error {
	slog.InfoContext(ctx, "Processing backup message",
		"transaction_id", msg.TransactionID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.BackupActionSync:
		return w.sync(ctx, msg.TransactionID)
	case amqp.BackupActionDelete:
		return w.remove(ctx, msg.TransactionID)
	default:
		// Unknown actions are dropped, not requeued: redelivery cannot fix them.
		slog.WarnContext(ctx, "Dropping backup message with unknown action",
			"transaction_id", msg.TransactionID,
			"action", msg.Action)
		return nil
	}
}

func (w *BackupWorker) sync(ctx context.Context, transactionID string) error {
	tx, err := w.source.GetTransaction(ctx, transactionID)
	if errors.Is(err, records.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction deleted before sync, removing from mirror",
			"transaction_id", transactionID)
		return w.remove(ctx, transactionID)
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	ref, err := w.mirror.SyncTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("sync transaction to mirror: %w", err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"transaction_id", transactionID,
		"sheets_ref", ref)
	return nil
}

func (w *BackupWorker) remove(ctx context.Context, transactionID string) error {
	if err := w.mirror.RemoveTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("remove transaction from mirror: %w", err)
	}
	slog.InfoContext(ctx, "Transaction removed from mirror", "transaction_id", transactionID)
	return nil
}
