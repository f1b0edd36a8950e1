// Package workers bounds CPU-heavy model work so concurrent requests are
// not starved.
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned when a task exceeds the pool timeout
var ErrTimeout = errors.New("task timed out")

// Pool runs at most Size tasks at once, each bounded by a timeout. A task
// that times out keeps its slot until it returns, so the bound holds even
// for tasks that ignore their context.
type Pool struct {
	sem      *semaphore.Weighted
	size     int
	timeout  time.Duration
	inFlight atomic.Int64
}

// NewPool creates a pool. A timeout <= 0 disables the per-task deadline.
func NewPool(size int, timeout time.Duration) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		sem:     semaphore.NewWeighted(int64(size)),
		size:    size,
		timeout: timeout,
	}
}

// Size returns the concurrency limit
func (p *Pool) Size() int {
	return p.size
}

// InFlight returns the number of running tasks
func (p *Pool) InFlight() int64 {
	return p.inFlight.Load()
}

// Do waits for a slot and runs fn
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	if p.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	done := make(chan error, 1)
	p.inFlight.Add(1)
	go func() {
		defer func() {
			p.inFlight.Add(-1)
			p.sem.Release(1)
		}()
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("task panicked: %v", r)
			}
		}()
		done <- fn(runCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-runCtx.Done():
		if ctx.Err() == nil {
			return fmt.Errorf("%w after %s", ErrTimeout, p.timeout)
		}
		return ctx.Err()
	}
}

// Run is Do for tasks that return a value
func Run[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
