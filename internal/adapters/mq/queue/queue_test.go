package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, Job{ID: "r1", Pass: "validate", Index: 0}); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}

	j := <-q.Dequeue(ctx)
	if j.Index != 0 || j.Pass != "validate" {
		t.Errorf("unexpected job %+v", j)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.EnqueueWait(ctx, Job{Index: i}); err != nil {
			t.Fatalf("expected enqueue %d to succeed: %v", i, err)
		}
	}

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(waitCtx, Job{Index: 2}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestInMemoryQueue_EnqueueWaitDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()
	const n = 50

	go func() {
		for i := 0; i < n; i++ {
			if err := q.EnqueueWait(ctx, Job{Index: i}); err != nil {
				t.Errorf("enqueue %d: %v", i, err)
				return
			}
		}
		_ = q.Close()
	}()

	var mu sync.Mutex
	seen := make(map[int]bool)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range q.Dequeue(ctx) {
				mu.Lock()
				seen[j.Index] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Errorf("expected %d distinct jobs, got %d", n, len(seen))
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue()
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, Job{Index: 7}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if err := q.EnqueueWait(ctx, Job{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var got []Job
	for j := range q.Dequeue(ctx) {
		got = append(got, j)
	}
	if len(got) != 1 || got[0].Index != 7 {
		t.Errorf("queued job should still be delivered, got %+v", got)
	}
}

func TestInMemoryQueue_DequeueCancel(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	ch := q.Dequeue(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Error("dequeue channel not closed after cancel")
	}
}
