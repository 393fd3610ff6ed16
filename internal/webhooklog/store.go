// internal/webhooklog/store.go
package webhooklog

import (
	"context"
	"sync"

	"lead-qualifier/internal/models"
)

// DefaultLimit bounds List when the caller passes no limit.
const DefaultLimit = 100

// Store is the append-only delivery attempt log. List returns newest first.
type Store interface {
	Append(ctx context.Context, attempt models.DeliveryAttempt) error
	List(ctx context.Context, limit int) ([]models.DeliveryAttempt, error)
}

// MemoryRing keeps the most recent entries up to its capacity.
type MemoryRing struct {
	mu       sync.RWMutex
	entries  []models.DeliveryAttempt
	next     int
	full     bool
	capacity int
}

func NewMemoryRing(capacity int) *MemoryRing {
	if capacity <= 0 {
		capacity = DefaultLimit
	}
	return &MemoryRing{
		entries:  make([]models.DeliveryAttempt, capacity),
		capacity: capacity,
	}
}

func (r *MemoryRing) Append(_ context.Context, attempt models.DeliveryAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = attempt
	r.next = (r.next + 1) % r.capacity
	if r.next == 0 {
		r.full = true
	}
	return nil
}

func (r *MemoryRing) List(_ context.Context, limit int) ([]models.DeliveryAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	size := r.next
	if r.full {
		size = r.capacity
	}
	if limit <= 0 || limit > size {
		limit = size
	}

	out := make([]models.DeliveryAttempt, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + r.capacity) % r.capacity
		out = append(out, r.entries[idx])
	}
	return out, nil
}

func (r *MemoryRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.full {
		return r.capacity
	}
	return r.next
}
