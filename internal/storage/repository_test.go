package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "dompet.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 500}, Category: "Food",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("id or timestamp not assigned: %+v", first)
	}
	if first.Note != "Food" {
		t.Fatalf("blank note should default to category, got %q", first.Note)
	}

	repo.now = func() time.Time { return time.Now().Add(time.Minute) }
	second, err := repo.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Income, Amount: core.Money{Cents: 1000}, Category: "Salary", Note: "March",
	})
	if err != nil {
		t.Fatalf("append second: %v", err)
	}

	items, err := repo.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("listed %d transactions, want 2", len(items))
	}
	// Newest first.
	if items[0].ID != second.ID || items[1].ID != first.ID {
		t.Fatalf("wrong order: %+v", items)
	}
	if items[0].Type != core.Income || items[0].Amount.Cents != 1000 {
		t.Fatalf("fields not round-tripped: %+v", items[0])
	}

	got, err := repo.GetTransaction(ctx, first.ID)
	if err != nil || got.Category != "Food" {
		t.Fatalf("GetTransaction = %+v, %v", got, err)
	}

	if err := repo.DeleteTransaction(ctx, "u1", first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, "u1", first.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, "someone-else", second.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("cross-user delete error = %v, want ErrNotFound", err)
	}
}

func TestReminderRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, day := range []int{25, 1, 10} {
		if _, err := repo.AppendReminder(ctx, core.Reminder{
			UserID: "u1", Title: "bill", Amount: core.Money{Cents: 100}, DayOfMonth: day,
		}); err != nil {
			t.Fatalf("append day %d: %v", day, err)
		}
	}

	items, err := repo.ListReminders(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("listed %d reminders, want 3", len(items))
	}
	for i, want := range []int{1, 10, 25} {
		if items[i].DayOfMonth != want {
			t.Fatalf("position %d day = %d, want %d", i, items[i].DayOfMonth, want)
		}
	}

	if err := repo.DeleteReminder(ctx, "u1", items[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteReminder(ctx, "u1", "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("missing delete error = %v, want ErrNotFound", err)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, core.User{Username: "budi", Email: "Budi@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	// Stored lowercased, looked up case insensitively.
	got, err := repo.GetUserByEmail(ctx, "BUDI@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}

	if _, err := repo.CreateUser(ctx, core.User{Username: "x", Email: "budi@example.com", PasswordHash: "h"}); !errors.Is(err, records.ErrUserExists) {
		t.Fatalf("duplicate error = %v, want ErrUserExists", err)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("missing user error = %v, want ErrNotFound", err)
	}
}

func TestMutationsPushSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := repo.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	tx, err := repo.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 250}, Category: "Food",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	select {
	case snap := <-ch:
		if snap.UserID != "u1" || len(snap.Transactions) != 1 || snap.Transactions[0].ID != tx.ID {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after mutation")
	}

	if _, err := repo.AppendReminder(ctx, core.Reminder{
		UserID: "u1", Title: "Rent", Amount: core.Money{Cents: 100}, DayOfMonth: 5,
	}); err != nil {
		t.Fatalf("append reminder: %v", err)
	}

	select {
	case snap := <-ch:
		if len(snap.Reminders) != 1 || len(snap.Transactions) != 1 {
			t.Fatalf("snapshot is not a full replacement: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after reminder append")
	}
}
