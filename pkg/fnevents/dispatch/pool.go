// Package dispatch runs short-lived fire-and-forget background work.
//
// Submit never blocks the caller. At most Limit tasks run at once; the rest
// wait on their own goroutines. Failures and panics are logged and dropped.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/randalmurphal/fnevents/pkg/fnevents/observability"
)

// DefaultLimit is the concurrency limit when none is given.
const DefaultLimit = 4

// Task is one unit of background work.
type Task func(ctx context.Context) error

// PanicError wraps a recovered panic.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Pool is a bounded fire-and-forget executor. The zero value is not usable;
// create pools with NewPool.
type Pool struct {
	active *semaphore.Weighted
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewPool creates a pool running at most limit tasks concurrently.
// A nil logger disables failure logging.
func NewPool(limit int, logger *slog.Logger) *Pool {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Pool{
		active: semaphore.NewWeighted(int64(limit)),
		logger: logger,
	}
}

// Submit schedules fn and returns immediately.
func (p *Pool) Submit(name string, fn Task) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx := context.Background()
		if err := p.active.Acquire(ctx, 1); err != nil {
			observability.LogDispatchFailed(ctx, p.logger, name, err)
			return
		}
		defer p.active.Release(1)

		if err := run(ctx, fn); err != nil {
			observability.LogDispatchFailed(ctx, p.logger, name, err)
		}
	}()
}

// Wait blocks until every submitted task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func run(ctx context.Context, fn Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn(ctx)
}
