// Package dedupe defines the interface for frame idempotency tracking.
//
// Browser capture transports retransmit frames; recording the same frame
// twice would skew every downstream metric, so ingest checks each frame ID
// here before it reaches the queue.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the number of remembered frame IDs.
const defaultMaxSize = 50000

// Deduper records seen frame IDs to ensure at-most-once recording.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing a retry. Used when
	// a frame was marked seen but failed to enqueue (backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map. When the bound is
// reached the most recently added IDs are evicted first: old IDs belong to
// frames long past their retransmit window, so they are the ones worth
// keeping least recently.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]int // id -> index into order
	order   []string       // insertion order, newest last
	maxSize int            // 0 or negative means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration
// options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]int)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictNewest()
	}

	d.seen[id] = len(d.order)
	d.order = append(d.order, id)
	d.size.Store(int64(len(d.seen)))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.removeAt(idx)
	d.size.Store(int64(len(d.seen)))
}

// Size returns the current number of remembered frame IDs.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictNewest drops the most recently recorded ID. Caller holds d.mu.
func (d *inMemoryDeduper) evictNewest() {
	if len(d.order) == 0 {
		return
	}
	last := d.order[len(d.order)-1]
	delete(d.seen, last)
	d.order = d.order[:len(d.order)-1]
}

// removeAt swaps the victim with the tail to keep removal O(1).
// Caller holds d.mu.
func (d *inMemoryDeduper) removeAt(idx int) {
	last := len(d.order) - 1
	if idx != last {
		moved := d.order[last]
		d.order[idx] = moved
		d.seen[moved] = idx
	}
	d.order = d.order[:last]
}
