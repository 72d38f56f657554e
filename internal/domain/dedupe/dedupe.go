// Package dedupe tracks command ids so a retried command is applied at most
// once per window.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 1024

// Deduper records seen command ids to ensure at-most-once application.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord forgets id so the command can be retried, used when a
	// recorded command could not be queued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// window is a bounded FIFO of ids: when full, the oldest id is forgotten.
type window struct {
	mu      sync.Mutex
	order   *list.List
	seen    map[string]*list.Element
	maxSize int
}

// NewInMemoryDeduper creates a deduper with configuration options. A max
// size of zero or less keeps every id.
func NewInMemoryDeduper(opts ...Option) Deduper {
	w := &window{
		maxSize: defaultMaxSize,
		order:   list.New(),
		seen:    make(map[string]*list.Element),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// SeenAndRecord reports whether id was seen and records it if not. Empty ids
// are never deduplicated.
func (w *window) SeenAndRecord(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.seen[id]; ok {
		return true
	}
	if w.maxSize > 0 && w.order.Len() >= w.maxSize {
		w.evictOldest()
	}
	w.seen[id] = w.order.PushBack(id)
	return false
}

// Unrecord forgets id.
func (w *window) Unrecord(ctx context.Context, id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if el, ok := w.seen[id]; ok {
		w.order.Remove(el)
		delete(w.seen, id)
	}
}

// Must be called with w.mu held.
func (w *window) evictOldest() {
	el := w.order.Front()
	if el == nil {
		return
	}
	w.order.Remove(el)
	delete(w.seen, el.Value.(string))
}

// Size returns the number of remembered ids.
func (w *window) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.order.Len())
}
