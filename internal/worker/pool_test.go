package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *atomic.Int32
	err     error
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countResult{err: j.err}
}

func TestPoolRunsAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var counter atomic.Int32
	for i := 0; i < 10; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Fatalf("expected 10 results, got %d", len(results))
	}
	if counter.Load() != 10 {
		t.Errorf("expected 10 executions, got %d", counter.Load())
	}
}

func TestPoolPropagatesErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var counter atomic.Int32
	jobErr := errors.New("boom")
	pool.Submit(&countJob{counter: &counter, err: jobErr})
	pool.Submit(&countJob{counter: &counter})

	results := pool.Wait()
	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed result, got %d", failed)
	}
}

func TestPoolQueueWellBeyondBuffers(t *testing.T) {
	// Callers submit every job before calling Wait. That must work far past
	// the channel buffer sizes, with results draining while submission is
	// still in progress.
	pool := NewPool(1)
	pool.Start()

	var counter atomic.Int32
	done := make(chan []Result, 1)
	go func() {
		for i := 0; i < 30; i++ {
			pool.Submit(&countJob{counter: &counter})
		}
		done <- pool.Wait()
	}()

	select {
	case results := <-done:
		if len(results) != 30 {
			t.Fatalf("expected 30 results, got %d", len(results))
		}
		if counter.Load() != 30 {
			t.Errorf("expected 30 executions, got %d", counter.Load())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("pool stalled with all jobs queued ahead of Wait")
	}
}

func TestPoolMinimumOneWorker(t *testing.T) {
	pool := NewPool(0)
	pool.Start()

	var counter atomic.Int32
	pool.Submit(&countJob{counter: &counter})

	results := pool.Wait()
	if len(results) != 1 {
		t.Fatalf("zero-worker pool should default to one worker, got %d results", len(results))
	}
}

func TestPoolWaitWithNoJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	if results := pool.Wait(); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
