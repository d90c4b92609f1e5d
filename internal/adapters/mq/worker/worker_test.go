package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/puttrack/internal/adapters/mq/queue"
	"github.com/okian/puttrack/internal/adapters/mq/worker"
	"github.com/okian/puttrack/internal/domain/model"
	logging "github.com/okian/puttrack/pkg/logger"
)

type recorder struct {
	mu   sync.Mutex
	seen map[string][]float64
	fail map[string]bool
}

func newRecorder() *recorder {
	return &recorder{seen: map[string][]float64{}, fail: map[string]bool{}}
}

func (r *recorder) Process(_ context.Context, j queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[j.Frame.FrameID] {
		return errors.New("boom")
	}
	r.seen[j.SessionID] = append(r.seen[j.SessionID], j.Frame.FrameTime)
	return nil
}

func (r *recorder) times(session string) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.seen[session]...)
}

func job(session string, i int) queue.Job {
	return queue.Job{SessionID: session, Frame: model.Frame{FrameID: fmt.Sprintf("%s-%d", session, i), FrameTime: float64(i)}}
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a sharded queue", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		q := queue.NewShardedQueue(queue.WithCapacity(1000), queue.WithShards(3))
		rec := newRecorder()
		pool := worker.NewPool(q, rec)
		convey.So(pool.Size(), convey.ShouldEqual, 3)
		pool.Start(ctx)

		convey.Convey("When frames of several sessions are enqueued", func() {
			for i := range 40 {
				for _, s := range []string{"a", "b", "c", "d"} {
					convey.So(q.Enqueue(ctx, job(s, i)), convey.ShouldBeNil)
				}
			}
			for _, s := range []string{"a", "b", "c", "d"} {
				convey.So(q.Drain(ctx, s), convey.ShouldBeNil)
			}

			convey.Convey("Then every session is processed completely and in order", func() {
				for _, s := range []string{"a", "b", "c", "d"} {
					got := rec.times(s)
					convey.So(len(got), convey.ShouldEqual, 40)
					for i := 1; i < len(got); i++ {
						convey.So(got[i], convey.ShouldBeGreaterThan, got[i-1])
					}
				}
			})
		})

		convey.Convey("When a frame fails to process", func() {
			rec.mu.Lock()
			rec.fail["e-1"] = true
			rec.mu.Unlock()
			for i := range 3 {
				convey.So(q.Enqueue(ctx, job("e", i)), convey.ShouldBeNil)
			}
			convey.So(q.Drain(ctx, "e"), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(rec.times("e"), convey.ShouldResemble, []float64{0, 2})
			})
		})

		convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)
		convey.So(q.IsClosed(), convey.ShouldBeTrue)
	})
}

func TestWorkerShutdown(t *testing.T) {
	convey.Convey("Given a single worker", t, func() {
		convey.So(logging.Init(), convey.ShouldBeNil)
		q := queue.NewShardedQueue(queue.WithShards(1))
		calls := 0
		w := worker.NewInMemoryWorker(q, 0, worker.ProcessorFunc(func(context.Context, queue.Job) error {
			calls++
			return nil
		}), worker.WithName("solo"), worker.WithLogger(logging.NewNop()))
		go w.Run(context.Background())

		convey.Convey("When it is shut down", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(calls, convey.ShouldEqual, 0)
		})
	})
}
