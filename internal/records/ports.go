// Package records defines the ports for the record store collaborators and
// the snapshot fan-out used to push full-collection updates to subscribers.
package records

import (
	"context"
	"errors"

	"dompet/internal/core"
)

var (
	// ErrNotFound is returned when a record id does not exist for the user.
	ErrNotFound = errors.New("record not found")
	// ErrUserExists is returned when registering an email already in use.
	ErrUserExists = errors.New("user already exists")
)

// Snapshot is a complete point-in-time replacement of one user's collections,
// never a delta. Transactions are ordered newest first, reminders by day of
// month ascending.
type Snapshot struct {
	UserID       string
	Transactions []core.Transaction
	Reminders    []core.Reminder
}

type (
	TransactionStore interface {
		// AppendTransaction stores tx, assigning its id and server timestamp,
		// and returns the stored record.
		AppendTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		// ListTransactions returns all of the user's transactions, newest first.
		ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, userID, id string) error
	}

	ReminderStore interface {
		AppendReminder(ctx context.Context, r core.Reminder) (core.Reminder, error)
		// ListReminders returns the user's reminders ordered by day of month.
		ListReminders(ctx context.Context, userID string) ([]core.Reminder, error)
		DeleteReminder(ctx context.Context, userID, id string) error
	}

	UserStore interface {
		// CreateUser stores u, assigning its id and timestamp. Returns
		// ErrUserExists when the email is already registered.
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		GetUserByID(ctx context.Context, id string) (core.User, error)
	}

	// SnapshotSource pushes a full snapshot to each watcher after every
	// mutation of the user's collections. Delivery is last-write-wins: a slow
	// watcher only ever observes the most recent snapshot, never a backlog.
	SnapshotSource interface {
		// Watch subscribes to the user's snapshots until ctx is done. The
		// channel is closed when the subscription ends.
		Watch(ctx context.Context, userID string) (<-chan Snapshot, error)
	}

	// Store is the full record-store contract an adapter provides.
	Store interface {
		TransactionStore
		ReminderStore
		UserStore
		SnapshotSource
		Close() error
	}
)
