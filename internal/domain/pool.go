package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"gooze.dev/pkg/mutorch/internal/adapter"
)

var (
	// ErrWorkerNotCheckedOut is returned when a worker is recycled without
	// being acquired first. It signals a bug that could dispatch a worker twice.
	ErrWorkerNotCheckedOut = errors.New("worker is not checked out")
	// ErrPoolClosed is returned by Acquire once the pool is closed.
	ErrPoolClosed = errors.New("worker pool is closed")
	// ErrEmptyPool is returned when a pool is created without workers.
	ErrEmptyPool = errors.New("worker pool needs at least one worker")
)

// WorkerPool hands out a fixed set of reusable test runners.
//
// Runners must be comparable (typically pointers). Callers blocked in Acquire
// are served in the order they started waiting, since they queue on the same
// channel of available runners.
type WorkerPool struct {
	runners    []adapter.TestRunner
	available  chan adapter.TestRunner
	closed     chan struct{}
	closeOnce  sync.Once
	closeErr   error
	mu         sync.Mutex
	checkedOut map[adapter.TestRunner]struct{}
}

// NewWorkerPool creates a pool owning the given runners.
func NewWorkerPool(runners []adapter.TestRunner) (*WorkerPool, error) {
	if len(runners) == 0 {
		return nil, ErrEmptyPool
	}

	pool := &WorkerPool{
		runners:    runners,
		available:  make(chan adapter.TestRunner, len(runners)),
		closed:     make(chan struct{}),
		checkedOut: make(map[adapter.TestRunner]struct{}, len(runners)),
	}

	seen := make(map[adapter.TestRunner]struct{}, len(runners))

	for i, runner := range runners {
		if runner == nil {
			return nil, fmt.Errorf("worker #%d is nil", i)
		}

		if _, dup := seen[runner]; dup {
			return nil, fmt.Errorf("worker #%d is registered twice", i)
		}

		seen[runner] = struct{}{}
		pool.available <- runner
	}

	return pool, nil
}

// Size returns the number of workers owned by the pool.
func (p *WorkerPool) Size() int {
	return len(p.runners)
}

// Available returns the number of idle workers.
func (p *WorkerPool) Available() int {
	return len(p.available)
}

// Acquire blocks until a worker is available, ctx is done or the pool closes.
func (p *WorkerPool) Acquire(ctx context.Context) (adapter.TestRunner, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case <-p.closed:
		return nil, ErrPoolClosed
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.closed:
		return nil, ErrPoolClosed
	case runner := <-p.available:
		p.mu.Lock()
		p.checkedOut[runner] = struct{}{}
		p.mu.Unlock()

		return runner, nil
	}
}

// Recycle returns an acquired worker to the pool, waking the longest waiting
// Acquire call if there is one.
func (p *WorkerPool) Recycle(runner adapter.TestRunner) error {
	p.mu.Lock()

	if _, ok := p.checkedOut[runner]; !ok {
		p.mu.Unlock()
		slog.Error("Recycled a worker that was not checked out", "worker", fmt.Sprintf("%v", runner))

		return ErrWorkerNotCheckedOut
	}

	delete(p.checkedOut, runner)
	p.mu.Unlock()

	// Never blocks: the channel has room for every worker.
	p.available <- runner

	return nil
}

// Close stops handing out workers, waits for every checked out worker to be
// recycled and disposes the workers that hold resources. Later calls return
// the result of the first one.
func (p *WorkerPool) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closeErr = p.close(ctx)
	})

	return p.closeErr
}

func (p *WorkerPool) close(ctx context.Context) error {
	close(p.closed)

	idle := make([]adapter.TestRunner, 0, len(p.runners))
	for len(idle) < len(p.runners) {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for workers: %w", ctx.Err())
		case runner := <-p.available:
			idle = append(idle, runner)
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)

	for _, runner := range idle {
		disposer, ok := runner.(adapter.Disposer)
		if !ok {
			continue
		}

		group.Go(func() error {
			if err := disposer.Dispose(groupCtx); err != nil {
				return fmt.Errorf("dispose worker: %w", err)
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		slog.Error("Failed to dispose workers", "error", err)
		return err
	}

	slog.Debug("Worker pool closed", "workers", len(idle))

	return nil
}
