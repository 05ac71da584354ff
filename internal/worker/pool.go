// Package worker provides a bounded worker pool and rate limiting for the
// concurrent parts of a run: batch weaving and description enrichment.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is the outcome of a job.
type Result interface {
	GetError() error
}

// Pool executes jobs on a fixed number of workers.
type Pool struct {
	workers    int
	jobQueue   chan Job
	results    chan Result
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	collected   []Result
	collectDone chan struct{}
}

// NewPool creates a pool with the given number of workers, at least one.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan Job, workers*2),
		results:     make(chan Result, workers*2),
		ctx:         ctx,
		cancelFunc:  cancel,
		collectDone: make(chan struct{}),
	}
}

// Start launches the workers and the result collector.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	go p.collect()
}

// collect drains results as workers produce them. Without a running drain,
// callers that queue more jobs than the channel buffers hold before calling
// Wait would block on Submit while workers block on a full results channel.
func (p *Pool) collect() {
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
	close(p.collectDone)
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. Submissions after Wait has closed the queue are
// dropped.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait closes the queue, waits for all submitted jobs and returns their
// results in completion order.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
	return p.collected
}

// Shutdown cancels outstanding work and stops the workers.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
