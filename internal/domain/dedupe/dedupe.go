package dedupe

import (
	"context"
	"sync"
)

const defaultMaxSize = 4096

// Deduper records seen IDs to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool
	// Unrecord forgets id so it can be retried, e.g. after the queue
	// refused the frame.
	Unrecord(ctx context.Context, id string)
	Size() int64
}

// windowDeduper remembers the last maxSize IDs in arrival order.
type windowDeduper struct {
	mu      sync.Mutex
	maxSize int
	seen    map[string]uint64
	// ring holds IDs in arrival order; ring[i] is stale when seen no
	// longer maps it to seq[i].
	ring []string
	seq  []uint64
	head int
	next uint64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &windowDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]uint64)
	return d
}

// SeenAndRecord implements Deduper.
func (d *windowDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictOldest()
	}
	d.next++
	d.seen[id] = d.next
	if d.maxSize > 0 {
		d.ring = append(d.ring, id)
		d.seq = append(d.seq, d.next)
	}
	return false
}

// evictOldest drops the oldest live entry, skipping unrecorded ones.
func (d *windowDeduper) evictOldest() {
	for d.head < len(d.ring) {
		id, seq := d.ring[d.head], d.seq[d.head]
		d.ring[d.head] = ""
		d.head++
		if cur, ok := d.seen[id]; ok && cur == seq {
			delete(d.seen, id)
			break
		}
	}
	// Compact once the dead prefix dominates.
	if d.head > len(d.ring)/2 {
		d.ring = append([]string(nil), d.ring[d.head:]...)
		d.seq = append([]uint64(nil), d.seq[d.head:]...)
		d.head = 0
	}
}

// Unrecord implements Deduper.
func (d *windowDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, id)
}

// Size implements Deduper.
func (d *windowDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.seen))
}
