// Package storage is the SQLite-backed record store. It persists users,
// transactions, and reminders, and publishes a full snapshot to the hub
// after every mutation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dompet/internal/core"
	"dompet/internal/records"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	hub     *records.Hub
	now     func() time.Time
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		hub:     records.NewHub(),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalize()
	tx.ID = uuid.NewString()
	tx.CreatedAt = r.now()

	if err := r.queries.CreateTransaction(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", tx.ID,
		"user_id", tx.UserID,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category)

	r.publishSnapshot(ctx, tx.UserID)
	return tx, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	return r.queries.ListTransactionsByUser(ctx, userID)
}

// GetTransaction loads a single transaction regardless of owner. Used by the
// backup worker to resolve queue messages.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, records.ErrNotFound
	}
	return tx, err
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	affected, err := r.queries.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}

	r.publishSnapshot(ctx, userID)
	return nil
}

func (r *SQLiteRepository) AppendReminder(ctx context.Context, rem core.Reminder) (core.Reminder, error) {
	if err := rem.Validate(); err != nil {
		return core.Reminder{}, err
	}
	rem.ID = uuid.NewString()
	rem.CreatedAt = r.now()

	if err := r.queries.CreateReminder(ctx, rem); err != nil {
		return core.Reminder{}, fmt.Errorf("create reminder: %w", err)
	}

	slog.InfoContext(ctx, "Reminder saved",
		"reminder_id", rem.ID,
		"user_id", rem.UserID,
		"day_of_month", rem.DayOfMonth)

	r.publishSnapshot(ctx, rem.UserID)
	return rem, nil
}

func (r *SQLiteRepository) ListReminders(ctx context.Context, userID string) ([]core.Reminder, error) {
	return r.queries.ListRemindersByUser(ctx, userID)
}

func (r *SQLiteRepository) DeleteReminder(ctx context.Context, userID, id string) error {
	affected, err := r.queries.DeleteReminder(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if affected == 0 {
		return records.ErrNotFound
	}

	r.publishSnapshot(ctx, userID)
	return nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	u.ID = uuid.NewString()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = r.now()

	if err := r.queries.CreateUser(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return core.User{}, records.ErrUserExists
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := r.queries.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, records.ErrNotFound
	}
	return u, err
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	u, err := r.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, records.ErrNotFound
	}
	return u, err
}

func (r *SQLiteRepository) Watch(ctx context.Context, userID string) (<-chan records.Snapshot, error) {
	return r.hub.Watch(ctx, userID), nil
}

// publishSnapshot pushes the user's full current collections to watchers.
// A failed read is logged and the push skipped; the mutation itself already
// committed.
func (r *SQLiteRepository) publishSnapshot(ctx context.Context, userID string) {
	transactions, err := r.queries.ListTransactionsByUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load transactions for snapshot", "user_id", userID, "error", err)
		return
	}
	reminders, err := r.queries.ListRemindersByUser(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load reminders for snapshot", "user_id", userID, "error", err)
		return
	}

	r.hub.Publish(records.Snapshot{
		UserID:       userID,
		Transactions: transactions,
		Reminders:    reminders,
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
