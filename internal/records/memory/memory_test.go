package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"dompet/internal/core"
	"dompet/internal/records"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	fixed := time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time { return fixed })
	ctx := context.Background()

	tx, err := s.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Income, Amount: core.Money{Cents: 100}, Category: "Salary",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("id not assigned")
	}
	if !tx.CreatedAt.Equal(fixed) {
		t.Fatalf("createdAt = %v, want %v", tx.CreatedAt, fixed)
	}
	if tx.Note != "Salary" {
		t.Fatalf("blank note should default to category, got %q", tx.Note)
	}
}

func TestListTransactionsNewestFirst(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewWithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})
	ctx := context.Background()

	for _, cat := range []string{"first", "second", "third"} {
		if _, err := s.AppendTransaction(ctx, core.Transaction{
			UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 1}, Category: cat,
		}); err != nil {
			t.Fatalf("append %s: %v", cat, err)
		}
	}

	got, err := s.ListTransactions(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Category != "third" || got[2].Category != "first" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := New()
	ctx := context.Background()

	tx, _ := s.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 5}, Category: "Food",
	})

	if err := s.DeleteTransaction(ctx, "u1", tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", tx.ID); err != records.ErrNotFound {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	// Deleting another user's record by id must not work.
	tx2, _ := s.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 5}, Category: "Food",
	})
	if err := s.DeleteTransaction(ctx, "u2", tx2.ID); err != records.ErrNotFound {
		t.Fatalf("cross-user delete err = %v, want ErrNotFound", err)
	}
}

func TestRemindersOrderedByDay(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, day := range []int{25, 3, 14} {
		if _, err := s.AppendReminder(ctx, core.Reminder{
			UserID: "u1", Title: "bill", Amount: core.Money{Cents: 100}, DayOfMonth: day,
		}); err != nil {
			t.Fatalf("append day %d: %v", day, err)
		}
	}

	got, err := s.ListReminders(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got[0].DayOfMonth != 3 || got[1].DayOfMonth != 14 || got[2].DayOfMonth != 25 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestWatchPushesFullSnapshotOnMutation(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx, "u1")
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if _, err := s.AppendTransaction(ctx, core.Transaction{
		UserID: "u1", Type: core.Income, Amount: core.Money{Cents: 100}, Category: "Salary",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	select {
	case snap := <-ch:
		if snap.UserID != "u1" || len(snap.Transactions) != 1 {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after mutation")
	}

	r, _ := s.AppendReminder(ctx, core.Reminder{UserID: "u1", Title: "Rent", DayOfMonth: 1})
	select {
	case snap := <-ch:
		if len(snap.Reminders) != 1 || snap.Reminders[0].ID != r.ID {
			t.Fatalf("unexpected snapshot: %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot after reminder append")
	}
}

func TestUserLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, core.User{Username: "budi", Email: "Budi@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("id or timestamp not assigned: %+v", u)
	}

	// Email lookup is case insensitive.
	got, err := s.GetUserByEmail(ctx, "budi@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail = %+v, %v", got, err)
	}

	if _, err := s.GetUserByID(ctx, u.ID); err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}

	if _, err := s.CreateUser(ctx, core.User{Username: "other", Email: "BUDI@example.com", PasswordHash: "h"}); !errors.Is(err, records.ErrUserExists) {
		t.Fatalf("duplicate email error = %v, want ErrUserExists", err)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("missing user error = %v, want ErrNotFound", err)
	}
}
