package worker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"dompet/internal/amqp"
	"dompet/internal/backup"
	"dompet/internal/core"
	"dompet/internal/records"
)

type fakeSource struct {
	transactions map[string]core.Transaction
}

func (f *fakeSource) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	tx, ok := f.transactions[id]
	if !ok {
		return core.Transaction{}, records.ErrNotFound
	}
	return tx, nil
}

func TestBackupWorkerSyncMirrorsTransaction(t *testing.T) {
	tx := core.Transaction{ID: "t1", UserID: "u1", Type: core.Expense, Amount: core.Money{Cents: 500}, Category: "Food"}
	source := &fakeSource{transactions: map[string]core.Transaction{"t1": tx}}
	mirror := backup.NewMemoryMirror()
	w := NewBackupWorker(source, mirror)

	if err := w.HandleBackupMessage(context.Background(), amqp.NewBackupMessage("t1", "u1", amqp.BackupActionSync)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, ok := mirror.Get("t1")
	if !ok || got.Amount.Cents != 500 {
		t.Fatalf("mirror row = %+v, %v", got, ok)
	}
}

func TestBackupWorkerSyncOfDeletedTransactionRemoves(t *testing.T) {
	source := &fakeSource{transactions: map[string]core.Transaction{}}
	mirror := backup.NewMemoryMirror()
	if _, err := mirror.SyncTransaction(context.Background(), core.Transaction{ID: "t1"}); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}
	w := NewBackupWorker(source, mirror)

	if err := w.HandleBackupMessage(context.Background(), amqp.NewBackupMessage("t1", "u1", amqp.BackupActionSync)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if mirror.Len() != 0 {
		t.Fatalf("mirror still has %d rows, want 0", mirror.Len())
	}
}

func TestBackupWorkerDelete(t *testing.T) {
	source := &fakeSource{transactions: map[string]core.Transaction{}}
	mirror := backup.NewMemoryMirror()
	if _, err := mirror.SyncTransaction(context.Background(), core.Transaction{ID: "t1"}); err != nil {
		t.Fatalf("seed mirror: %v", err)
	}
	w := NewBackupWorker(source, mirror)

	if err := w.HandleBackupMessage(context.Background(), amqp.NewBackupMessage("t1", "u1", amqp.BackupActionDelete)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if mirror.Len() != 0 {
		t.Fatalf("mirror still has %d rows, want 0", mirror.Len())
	}

	// Deleting a never-mirrored id is not an error.
	if err := w.HandleBackupMessage(context.Background(), amqp.NewBackupMessage("unknown", "u1", amqp.BackupActionDelete)); err != nil {
		t.Fatalf("handle unknown id: %v", err)
	}
}

func TestBackupWorkerUnknownActionDropped(t *testing.T) {
	w := NewBackupWorker(&fakeSource{}, backup.NewMemoryMirror())
	if err := w.HandleBackupMessage(context.Background(), amqp.NewBackupMessage("t1", "u1", "rename")); err != nil {
		t.Fatalf("unknown action should be dropped without error, got %v", err)
	}
}

type recordingNotifier struct {
	mu        sync.Mutex
	delivered []Notification
	err       error
}

func (n *recordingNotifier) Notify(_ context.Context, notification Notification) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delivered = append(n.delivered, notification)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.delivered)
}

func TestAlarmWorkerFiresAfterDelay(t *testing.T) {
	notifier := &recordingNotifier{}
	w := NewAlarmWorker(notifier)

	req := amqp.NewAlarmRequest("Bill reminder", "Pay rent", 0)
	if err := w.HandleAlarmRequest(context.Background(), req); err != nil {
		t.Fatalf("handle: %v", err)
	}
	w.Wait()

	if notifier.count() != 1 {
		t.Fatalf("delivered %d notifications, want 1", notifier.count())
	}
	notifier.mu.Lock()
	got := notifier.delivered[0]
	notifier.mu.Unlock()
	if got.Title != "Bill reminder" || got.Body != "Pay rent" {
		t.Fatalf("unexpected notification: %+v", got)
	}
}

func TestAlarmWorkerDropsArmedAlarmsOnCancel(t *testing.T) {
	notifier := &recordingNotifier{}
	w := NewAlarmWorker(notifier)
	ctx, cancel := context.WithCancel(context.Background())

	req := amqp.NewAlarmRequest("Bill reminder", "Pay rent", 3600)
	if err := w.HandleAlarmRequest(ctx, req); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if w.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", w.Pending())
	}

	cancel()
	w.Wait()

	if notifier.count() != 0 {
		t.Fatalf("cancelled alarm still delivered %d notifications", notifier.count())
	}
	if w.Pending() != 0 {
		t.Fatalf("pending = %d after drop, want 0", w.Pending())
	}
}

func TestAlarmWorkerNotifierFailureIsSwallowed(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("push channel down")}
	w := NewAlarmWorker(notifier)

	if err := w.HandleAlarmRequest(context.Background(), amqp.NewAlarmRequest("t", "b", 0)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	w.Wait()
	// No retry: the failure is logged and the alarm is spent.
	if w.Pending() != 0 {
		t.Fatalf("pending = %d, want 0", w.Pending())
	}
}
