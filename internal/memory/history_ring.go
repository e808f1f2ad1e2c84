package memory

import (
	"context"
	"fmt"
	"sync"
)

// RingHistory is a fixed-capacity HistoryStore that drops the oldest record
// when full.
type RingHistory struct {
	mu    sync.RWMutex
	buf   []ExecutionRecord
	start int
	size  int
}

// Compile-time interface check.
var _ HistoryStore = (*RingHistory)(nil)

// NewRingHistory creates a ring holding at most capacity records.
func NewRingHistory(capacity int) *RingHistory {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &RingHistory{buf: make([]ExecutionRecord, capacity)}
}

// Capacity returns the maximum number of records kept.
func (h *RingHistory) Capacity() int { return len(h.buf) }

// at returns the i-th oldest record. Callers hold the lock.
func (h *RingHistory) at(i int) ExecutionRecord {
	return h.buf[(h.start+i)%len(h.buf)]
}

// Append stores rec, overwriting the oldest record when full.
func (h *RingHistory) Append(_ context.Context, rec ExecutionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = rec
		h.size++
		return nil
	}
	h.buf[h.start] = rec
	h.start = (h.start + 1) % len(h.buf)
	return nil
}

// Recent returns up to n of the newest records, oldest first.
func (h *RingHistory) Recent(_ context.Context, n int) ([]ExecutionRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]ExecutionRecord, n)
	for i := range n {
		out[i] = h.at(h.size - n + i)
	}
	return out, nil
}

// Get returns the record with the given ID.
func (h *RingHistory) Get(_ context.Context, id string) (ExecutionRecord, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for i := h.size - 1; i >= 0; i-- {
		if rec := h.at(i); rec.ID == id {
			return rec, nil
		}
	}
	return ExecutionRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
}

// Prune keeps only the keep newest records.
func (h *RingHistory) Prune(_ context.Context, keep int) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	keep = max(keep, 0)
	if keep >= h.size {
		return 0, nil
	}
	removed := h.size - keep
	for i := range removed {
		h.buf[(h.start+i)%len(h.buf)] = ExecutionRecord{}
	}
	h.start = (h.start + removed) % len(h.buf)
	h.size = keep
	return removed, nil
}

// Len returns the number of stored records.
func (h *RingHistory) Len(_ context.Context) (int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size, nil
}
