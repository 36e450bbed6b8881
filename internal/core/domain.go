package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// UncategorizedLabel is the bucket used for records without a category.
const UncategorizedLabel = "Uncategorized"

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is a single income or expense record. ID and CreatedAt are
	// assigned by the record store; CreatedAt may be zero while a write is
	// still pending.
	Transaction struct {
		ID        string
		UserID    string
		Type      TransactionType
		Amount    Money
		Category  string
		Note      string
		CreatedAt time.Time
	}

	// User is an account holder. PasswordHash is a bcrypt hash, never the
	// plaintext password.
	User struct {
		ID           string
		Username     string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}

	// Reminder is a monthly bill obligation defined by a day number alone,
	// independent of any specific month's length.
	Reminder struct {
		ID         string
		UserID     string
		Title      string
		Amount     Money
		DayOfMonth int
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidDayOfMonth = errors.New("day of month must be between 1 and 31")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyTitle        = errors.New("empty title")
	ErrInvalidEmail      = errors.New("invalid email")
	ErrInvalidUsername   = errors.New("invalid username")
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrEmptyCategory
	}
	if len(tx.Category) > 100 {
		return errors.New("category too long (max 100 characters)")
	}
	if len(tx.Note) > 200 {
		return errors.New("note too long (max 200 characters)")
	}
	return nil
}

// Normalize fills derived defaults: a blank note falls back to the category
// name, matching how records are displayed.
func (tx Transaction) Normalize() Transaction {
	tx.Category = strings.TrimSpace(tx.Category)
	tx.Note = strings.TrimSpace(tx.Note)
	if tx.Note == "" {
		tx.Note = tx.Category
	}
	return tx
}

func (u User) Validate() error {
	if name := strings.TrimSpace(u.Username); name == "" || len(name) > 50 {
		return ErrInvalidUsername
	}
	email := strings.TrimSpace(u.Email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || len(email) > 254 {
		return ErrInvalidEmail
	}
	return nil
}

func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if len(r.Title) > 100 {
		return errors.New("title too long (max 100 characters)")
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}
