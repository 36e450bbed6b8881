// Package backup mirrors committed transactions to an external spreadsheet.
// The local store stays authoritative; the mirror is an append-only safety
// copy driven by queue messages.
package backup

import (
	"context"

	"dompet/internal/core"
)

// TransactionMirror is the outbound port to the backup target.
type TransactionMirror interface {
	// SyncTransaction writes or rewrites the transaction's row and returns a
	// reference to it.
	SyncTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	// RemoveTransaction clears the row for the given transaction id. Unknown
	// ids are not an error: the row may never have been mirrored.
	RemoveTransaction(ctx context.Context, transactionID string) error
}
