// Package memory is an in-process record store used by tests and the
// "memory" data backend. It honors the same snapshot-push contract as the
// SQLite adapter.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dompet/internal/core"
	"dompet/internal/records"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string][]core.Transaction // keyed by user id
	reminders    map[string][]core.Reminder
	users        map[string]core.User // keyed by lowercased email
	hub          *records.Hub
	now          func() time.Time
}

var _ records.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string][]core.Transaction),
		reminders:    make(map[string][]core.Reminder),
		users:        make(map[string]core.User),
		hub:          records.NewHub(),
		now:          time.Now,
	}
}

// NewWithClock allows tests to pin server-assigned timestamps.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

func (s *Store) AppendTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	tx = tx.Normalize()
	tx.ID = uuid.NewString()
	tx.CreatedAt = s.now()

	s.mu.Lock()
	s.transactions[tx.UserID] = append(s.transactions[tx.UserID], tx)
	snap := s.snapshotLocked(tx.UserID)
	s.mu.Unlock()

	s.hub.Publish(snap)
	return tx, nil
}

func (s *Store) ListTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedTransactions(s.transactions[userID]), nil
}

func (s *Store) DeleteTransaction(_ context.Context, userID, id string) error {
	s.mu.Lock()
	items := s.transactions[userID]
	idx := -1
	for i, tx := range items {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return records.ErrNotFound
	}
	s.transactions[userID] = append(items[:idx], items[idx+1:]...)
	snap := s.snapshotLocked(userID)
	s.mu.Unlock()

	s.hub.Publish(snap)
	return nil
}

func (s *Store) AppendReminder(_ context.Context, r core.Reminder) (core.Reminder, error) {
	if err := r.Validate(); err != nil {
		return core.Reminder{}, err
	}
	r.ID = uuid.NewString()
	r.CreatedAt = s.now()

	s.mu.Lock()
	s.reminders[r.UserID] = append(s.reminders[r.UserID], r)
	snap := s.snapshotLocked(r.UserID)
	s.mu.Unlock()

	s.hub.Publish(snap)
	return r, nil
}

func (s *Store) ListReminders(_ context.Context, userID string) ([]core.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedReminders(s.reminders[userID]), nil
}

func (s *Store) DeleteReminder(_ context.Context, userID, id string) error {
	s.mu.Lock()
	items := s.reminders[userID]
	idx := -1
	for i, r := range items {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return records.ErrNotFound
	}
	s.reminders[userID] = append(items[:idx], items[idx+1:]...)
	snap := s.snapshotLocked(userID)
	s.mu.Unlock()

	s.hub.Publish(snap)
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	key := strings.ToLower(strings.TrimSpace(u.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[key]; exists {
		return core.User{}, records.ErrUserExists
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.now()
	s.users[key] = u
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return core.User{}, records.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, records.ErrNotFound
}

func (s *Store) Watch(ctx context.Context, userID string) (<-chan records.Snapshot, error) {
	return s.hub.Watch(ctx, userID), nil
}

func (s *Store) Close() error { return nil }

// snapshotLocked builds a full replacement snapshot. Callers hold s.mu.
func (s *Store) snapshotLocked(userID string) records.Snapshot {
	return records.Snapshot{
		UserID:       userID,
		Transactions: sortedTransactions(s.transactions[userID]),
		Reminders:    sortedReminders(s.reminders[userID]),
	}
}

func sortedTransactions(in []core.Transaction) []core.Transaction {
	out := append([]core.Transaction(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func sortedReminders(in []core.Reminder) []core.Reminder {
	out := append([]core.Reminder(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayOfMonth < out[j].DayOfMonth })
	return out
}
