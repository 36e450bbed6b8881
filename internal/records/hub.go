package records

import (
	"context"
	"sync"
)

// Hub fans snapshots out to watchers. Each watcher holds a one-slot channel:
// publishing replaces any undelivered snapshot, so watchers always see the
// latest state and stale callbacks are simply overwritten.
type Hub struct {
	mu       sync.Mutex
	watchers map[string]map[int]chan Snapshot
	nextID   int
}

func NewHub() *Hub {
	return &Hub{watchers: make(map[string]map[int]chan Snapshot)}
}

// Publish delivers snap to every watcher of snap.UserID without blocking.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.watchers[snap.UserID] {
		// Drain the stale value, if any, then replace it.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Watch registers a watcher for userID. The returned channel closes when ctx
// is done.
func (h *Hub) Watch(ctx context.Context, userID string) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	if h.watchers[userID] == nil {
		h.watchers[userID] = make(map[int]chan Snapshot)
	}
	id := h.nextID
	h.nextID++
	h.watchers[userID][id] = ch
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.watchers[userID], id)
		if len(h.watchers[userID]) == 0 {
			delete(h.watchers, userID)
		}
		h.mu.Unlock()
		close(ch)
	}()

	return ch
}

// WatcherCount reports how many subscriptions exist for userID.
func (h *Hub) WatcherCount(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[userID])
}
