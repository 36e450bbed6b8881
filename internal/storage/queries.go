package storage

import (
	"context"
	"database/sql"

	"dompet/internal/core"
)

// Queries wraps the raw SQL executed against the record tables.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const createTransaction = `
INSERT INTO transactions (id, user_id, type, amount_cents, category, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, tx core.Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount.Cents, tx.Category, tx.Note, tx.CreatedAt)
	return err
}

const listTransactionsByUser = `
SELECT id, user_id, type, amount_cents, category, note, created_at
FROM transactions
WHERE user_id = ?
ORDER BY created_at DESC, id
`

func (q *Queries) ListTransactionsByUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]core.Transaction, 0)
	for rows.Next() {
		var tx core.Transaction
		var typ string
		if err := rows.Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category, &tx.Note, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Type = core.TransactionType(typ)
		items = append(items, tx)
	}
	return items, rows.Err()
}

const getTransaction = `
SELECT id, user_id, type, amount_cents, category, note, created_at
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var tx core.Transaction
	var typ string
	err := q.db.QueryRowContext(ctx, getTransaction, id).
		Scan(&tx.ID, &tx.UserID, &typ, &tx.Amount.Cents, &tx.Category, &tx.Note, &tx.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	return tx, nil
}

const deleteTransaction = `
DELETE FROM transactions WHERE user_id = ? AND id = ?
`

// DeleteTransaction returns the number of rows removed.
func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteTransaction, userID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createReminder = `
INSERT INTO reminders (id, user_id, title, amount_cents, day_of_month, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateReminder(ctx context.Context, r core.Reminder) error {
	_, err := q.db.ExecContext(ctx, createReminder,
		r.ID, r.UserID, r.Title, r.Amount.Cents, r.DayOfMonth, r.CreatedAt)
	return err
}

const listRemindersByUser = `
SELECT id, user_id, title, amount_cents, day_of_month, created_at
FROM reminders
WHERE user_id = ?
ORDER BY day_of_month, id
`

func (q *Queries) ListRemindersByUser(ctx context.Context, userID string) ([]core.Reminder, error) {
	rows, err := q.db.QueryContext(ctx, listRemindersByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]core.Reminder, 0)
	for rows.Next() {
		var r core.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.Amount.Cents, &r.DayOfMonth, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteReminder = `
DELETE FROM reminders WHERE user_id = ? AND id = ?
`

// DeleteReminder returns the number of rows removed.
func (q *Queries) DeleteReminder(ctx context.Context, userID, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteReminder, userID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createUser = `
INSERT INTO users (id, username, email, password_hash, created_at)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx, createUser,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt)
	return err
}

const getUserByEmail = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx, getUserByEmail, email).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}

const getUserByID = `
SELECT id, username, email, password_hash, created_at
FROM users
WHERE id = ?
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (core.User, error) {
	var u core.User
	err := q.db.QueryRowContext(ctx, getUserByID, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return core.User{}, err
	}
	return u, nil
}
