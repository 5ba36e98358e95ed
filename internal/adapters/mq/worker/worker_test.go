package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/xcheck/internal/adapters/mq/queue"
	"github.com/okian/xcheck/internal/adapters/mq/worker"
	logging "github.com/okian/xcheck/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logging.Init(); err != nil {
		panic(err)
	}
}

type recorder struct {
	mu   sync.Mutex
	seen map[int]int
	fail map[int]error
}

func newRecorder() *recorder {
	return &recorder{seen: make(map[int]int), fail: make(map[int]error)}
}

func (r *recorder) Handle(_ context.Context, j queue.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[j.Index]++
	if j.Index == 13 {
		panic("unlucky log")
	}
	return r.fail[j.Index]
}

func fill(q *queue.InMemoryQueue, n int) {
	for i := 0; i < n; i++ {
		convey.So(q.EnqueueWait(context.Background(), queue.Job{ID: "run", Pass: "validate", Index: i}), convey.ShouldBeNil)
	}
	_ = q.Close()
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a filled queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		rec := newRecorder()
		rec.fail[3] = errors.New("broken log")
		fill(q, 20)
		pool := worker.NewPool(4, q, rec)

		convey.Convey("When the pool runs to completion", func() {
			err := pool.Run(context.Background())

			convey.Convey("Then every job is handled exactly once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(rec.seen), convey.ShouldEqual, 20)
				for i := 0; i < 20; i++ {
					convey.So(rec.seen[i], convey.ShouldEqual, 1)
				}
			})

			convey.Convey("Then failures and panics are counted, not fatal", func() {
				processed, failed := pool.Stats()
				convey.So(processed, convey.ShouldEqual, 20)
				convey.So(failed, convey.ShouldEqual, 2)
				convey.So(pool.Size(), convey.ShouldEqual, 4)
			})
		})
	})

	convey.Convey("Given a pool whose context is cancelled", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(2, q, worker.HandlerFunc(func(context.Context, queue.Job) error { return nil }))
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		convey.Convey("Then Run returns the context error", func() {
			err := pool.Run(ctx)
			convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a non-positive size", t, func() {
		pool := worker.NewPool(0, queue.NewInMemoryQueue(), worker.HandlerFunc(func(context.Context, queue.Job) error { return nil }))
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
