package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/baharkarakas/blog-backend/internal/metrics"
)

var ErrStopped = errors.New("worker pool stopped")

const queueSize = 1024

type task func()

// Pool runs CPU-bound jobs (password hashing) on a fixed number of
// goroutines so a burst of logins cannot starve request handling.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan task
	mu      sync.RWMutex
	stopped bool
}

func NewPool(n int) *Pool {
	if n <= 0 {
		n = 1
	}
	p := &Pool{jobs: make(chan task, queueSize)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				metrics.WorkerQueueDepth.Dec()
				job()
			}
		}()
	}
	return p
}

// Submit queues f, blocking while the queue is full.
func (p *Pool) Submit(f func()) error {
	return p.submit(context.Background(), f)
}

func (p *Pool) submit(ctx context.Context, f func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	metrics.WorkerQueueDepth.Inc()
	select {
	case p.jobs <- f:
		return nil
	case <-ctx.Done():
		metrics.WorkerQueueDepth.Dec()
		return ctx.Err()
	}
}

// Do runs f on the pool and waits for its result. If ctx ends first, while
// queueing or while waiting, Do returns ctx.Err(); a queued f still runs and
// its result is dropped.
func (p *Pool) Do(ctx context.Context, f func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	if err := p.submit(ctx, func() { done <- f() }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains queued jobs and waits for the workers to exit.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
