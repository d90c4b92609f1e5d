// Package queue is the bounded frame queue between ingest and the workers.
//
// Frames are sharded by session ID so all frames of one session land on
// the same shard and are consumed in submission order.
package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/puttrack/internal/domain/model"
	"github.com/okian/puttrack/pkg/metrics"
)

const (
	defaultCapacity = 10000
	defaultShards   = 4
)

// Job is one unit of work for a worker.
type Job struct {
	SessionID string
	Frame     model.Frame
	Enqueued  time.Time
	// Barrier, when set, carries no frame. The worker closes it once every
	// job queued before it on the shard has been processed.
	Barrier chan struct{}
}

// IsBarrier reports whether the job is a drain marker.
func (j Job) IsBarrier() bool { return j.Barrier != nil }

// Queue provides non-blocking enqueue and per-shard channel dequeue.
type Queue interface {
	// Enqueue adds a job without blocking. Returns ErrFull when the shard
	// is at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, j Job) error
	// Drain blocks until every job queued for sessionID so far has been
	// processed, or ctx is done.
	Drain(ctx context.Context, sessionID string) error
	// Shard returns the receive side of shard i.
	Shard(i int) <-chan Job
	// Shards returns the shard count.
	Shards() int
	// Done marks one job taken from a shard as consumed.
	Done()
	// Len returns the number of queued jobs across shards.
	Len() int
	// Close stops accepting jobs and closes every shard channel.
	Close() error
}

// ShardedQueue implements Queue with one buffered channel per shard.
type ShardedQueue struct {
	capacity int
	shards   int
	chans    []chan Job
	size     atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewShardedQueue creates a queue with the configured shards.
func NewShardedQueue(opts ...Option) *ShardedQueue {
	q := &ShardedQueue{capacity: defaultCapacity, shards: defaultShards}
	for _, opt := range opts {
		opt(q)
	}
	per := max(1, q.capacity/q.shards)
	q.chans = make([]chan Job, q.shards)
	for i := range q.chans {
		q.chans[i] = make(chan Job, per)
	}
	metrics.UpdateQueueCapacity(per * q.shards)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)
	return q
}

// ShardFor returns the shard index of sessionID.
func (q *ShardedQueue) ShardFor(sessionID string) int {
	return int(xxhash.Sum64String(sessionID) % uint64(q.shards))
}

// Enqueue implements Queue.
func (q *ShardedQueue) Enqueue(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	if j.Enqueued.IsZero() {
		j.Enqueued = time.Now()
	}
	select {
	case q.chans[q.ShardFor(j.SessionID)] <- j:
		metrics.RecordQueueEnqueue()
		q.track(1)
		return nil
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return ctx.Err()
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Drain implements Queue.
func (q *ShardedQueue) Drain(ctx context.Context, sessionID string) error {
	done := make(chan struct{})
	if err := q.put(ctx, Job{SessionID: sessionID, Barrier: done, Enqueued: time.Now()}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// put is a blocking enqueue.
func (q *ShardedQueue) put(ctx context.Context, j Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	select {
	case q.chans[q.ShardFor(j.SessionID)] <- j:
		q.track(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done implements Queue.
func (q *ShardedQueue) Done() {
	metrics.RecordQueueDequeue()
	q.track(-1)
}

func (q *ShardedQueue) track(delta int64) {
	size := q.size.Add(delta)
	metrics.UpdateQueueSize(int(size))
	metrics.UpdateQueueUtilization(float64(size) / float64(cap(q.chans[0])*q.shards))
}

// Shard implements Queue.
func (q *ShardedQueue) Shard(i int) <-chan Job { return q.chans[i] }

// Shards implements Queue.
func (q *ShardedQueue) Shards() int { return q.shards }

// Len implements Queue.
func (q *ShardedQueue) Len() int {
	n := 0
	for _, c := range q.chans {
		n += len(c)
	}
	return n
}

// Close implements Queue.
func (q *ShardedQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	for _, c := range q.chans {
		close(c)
	}
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *ShardedQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
