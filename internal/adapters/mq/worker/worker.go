// Package worker runs validation jobs pulled from a queue on a fixed pool
// of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/xcheck/internal/adapters/mq/queue"
	"github.com/okian/xcheck/pkg/logger"
	"github.com/okian/xcheck/pkg/metrics"
)

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Handler processes one job. A returned error is logged and counted; it
// never stops the pool.
type Handler interface {
	Handle(ctx context.Context, j queue.Job) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, j queue.Job) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, j queue.Job) error { return f(ctx, j) }

// InMemoryWorker consumes jobs until the queue is drained.
type InMemoryWorker struct {
	queue   Queue
	handler Handler
	name    string
	logger  logger.Logger

	processed atomic.Int64
	failed    atomic.Int64
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, h Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		handler: h,
		name:    "worker",
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run processes jobs until the queue closes or ctx ends.
func (w *InMemoryWorker) Run(ctx context.Context) {
	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	err := w.handle(ctx, j)
	w.processed.Add(1)
	if err != nil {
		w.failed.Add(1)
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", j.Pass)
		w.logger.Error(ctx, "job failed",
			logger.String("job", j.ID),
			logger.String("pass", j.Pass),
			logger.Int("index", j.Index),
			logger.Error(err),
		)
	}
}

// handle turns a handler panic into an error so one bad log cannot take
// down the batch.
func (w *InMemoryWorker) handle(ctx context.Context, j queue.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return w.handler.Handle(ctx, j)
}

// Processed returns the number of jobs handled, including failures.
func (w *InMemoryWorker) Processed() int64 { return w.processed.Load() }

// Failed returns the number of jobs whose handler returned an error.
func (w *InMemoryWorker) Failed() int64 { return w.failed.Load() }

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates size workers. size < 1 means one worker per CPU.
func NewPool(size int, q Queue, h Handler, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, size),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, h, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and blocks until the queue is drained. It
// returns ctx.Err() when ctx ended first.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(p.workers))

	metrics.UpdateWorkerCount(len(p.workers))
	defer metrics.UpdateWorkerCount(0)

	for _, w := range p.workers {
		g.Go(func() error {
			w.Run(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		p.logger.Warn(ctx, "pool stopped before the queue drained", logger.Error(err))
		return fmt.Errorf("worker pool: %w", err)
	}
	return nil
}

// Stats sums job counters across workers.
func (p *Pool) Stats() (processed, failed int64) {
	for _, w := range p.workers {
		processed += w.Processed()
		failed += w.Failed()
	}
	return processed, failed
}
