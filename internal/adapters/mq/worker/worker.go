package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/okian/puttrack/internal/adapters/mq/queue"
	"github.com/okian/puttrack/pkg/logger"
	"github.com/okian/puttrack/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Processor handles one frame job.
type Processor interface {
	Process(ctx context.Context, j queue.Job) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, j queue.Job) error

// Process implements Processor.
func (f ProcessorFunc) Process(ctx context.Context, j queue.Job) error { return f(ctx, j) }

// Source is the consumer side of a sharded queue.
type Source interface {
	Shard(i int) <-chan queue.Job
	Shards() int
	Done()
}

// Worker consumes one shard.
type Worker interface {
	// Run processes jobs until the shard closes, ctx is canceled or
	// Shutdown is called.
	Run(ctx context.Context)
	// Shutdown stops the worker and waits for it to exit.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker owns a single shard so the jobs of a session are
// processed one at a time in queue order.
type InMemoryWorker struct {
	source    Source
	shard     int
	processor Processor
	name      string
	active    *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker for shard.
func NewInMemoryWorker(source Source, shard int, p Processor, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:    source,
		shard:     shard,
		processor: p,
		name:      "worker",
		active:    &atomic.Int64{},
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	jobs := w.source.Shard(w.shard)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.handle(ctx, j)
			w.source.Done()
		}
	}
}

func (w *InMemoryWorker) handle(ctx context.Context, j queue.Job) {
	if j.IsBarrier() {
		close(j.Barrier)
		return
	}
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(w.active.Add(-1))) }()

	start := time.Now()
	err := w.processor.Process(ctx, j)
	metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "process_error")
		w.logger.Warn(ctx, "frame rejected",
			logger.String("session_id", j.SessionID),
			logger.String("frame_id", j.Frame.FrameID),
			logger.Error(err),
		)
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Pool runs one worker per queue shard.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	logger  logger.Logger
}

// NewPool creates a worker for every shard of source.
func NewPool(source Source, p Processor, opts ...Option) *Pool {
	pool := &Pool{
		workers: make([]*InMemoryWorker, source.Shards()),
		source:  source,
		logger:  logger.Get().Named("worker-pool"),
	}
	active := &atomic.Int64{}
	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		w := NewInMemoryWorker(source, i, p, wopts...)
		w.active = active
		pool.workers[i] = w
	}
	metrics.UpdateWorkerCount(len(pool.workers))
	metrics.UpdateWorkerActiveCount(0)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue when it supports it, then waits for every
// worker to drain its shard.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	return nil
}
