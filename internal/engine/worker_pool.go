package engine

import (
	"context"
	"errors"
	"sync"
)

// errPoolClosed is returned by submit after drain.
var errPoolClosed = errors.New("worker pool is shut down")

// workerPool is a fixed-size goroutine pool with a bounded input queue.
// Results are delivered by the process function itself.
type workerPool[T any] struct {
	mu      sync.RWMutex
	closed  bool
	done    <-chan struct{}
	queue   chan T
	process func(ctx context.Context, t T)
	wg      sync.WaitGroup
}

// newWorkerPool creates and starts a pool with n goroutines and queue capacity cap.
func newWorkerPool[T any](ctx context.Context, n, cap int, fn func(context.Context, T)) *workerPool[T] {
	p := &workerPool[T]{
		done:    ctx.Done(),
		queue:   make(chan T, cap),
		process: fn,
	}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.run(ctx)
		}()
	}
	return p
}

func (p *workerPool[T]) run(ctx context.Context) {
	for {
		select {
		case t, ok := <-p.queue:
			if !ok {
				return
			}
			p.process(ctx, t)
		case <-ctx.Done():
			return
		}
	}
}

// TrySubmit enqueues without blocking (returns false if full).
func (p *workerPool[T]) TrySubmit(t T) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false, errPoolClosed
	}
	select {
	case p.queue <- t:
		return true, nil
	default:
		return false, nil
	}
}

// Submit blocks until the job is queued, ctx is done or the pool stops.
func (p *workerPool[T]) Submit(ctx context.Context, t T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return errPoolClosed
	}
	select {
	case p.queue <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return errPoolClosed
	}
}

// Drain closes the queue and waits for all workers to finish. Queued
// jobs still run unless the pool's context is cancelled first.
func (p *workerPool[T]) Drain() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

// QueueLen returns how many jobs are currently queued.
func (p *workerPool[T]) QueueLen() int {
	return len(p.queue)
}

// QueueCap returns the total queue capacity.
func (p *workerPool[T]) QueueCap() int {
	return cap(p.queue)
}
