package backup

import (
	"context"
	"fmt"
	"sync"

	"dompet/internal/core"
)

// MemoryMirror is an in-process TransactionMirror for tests and local runs
// without spreadsheet credentials.
type MemoryMirror struct {
	mu   sync.Mutex
	rows map[string]core.Transaction
}

var _ TransactionMirror = (*MemoryMirror)(nil)

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{rows: make(map[string]core.Transaction)}
}

func (m *MemoryMirror) SyncTransaction(_ context.Context, tx core.Transaction) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[tx.ID] = tx
	return fmt.Sprintf("memory:%s", tx.ID), nil
}

func (m *MemoryMirror) RemoveTransaction(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, transactionID)
	return nil
}

// Get returns the mirrored transaction, if present.
func (m *MemoryMirror) Get(transactionID string) (core.Transaction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.rows[transactionID]
	return tx, ok
}

// Len returns the number of mirrored rows.
func (m *MemoryMirror) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
