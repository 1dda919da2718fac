package domain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/mutorch/internal/adapter"
	adaptermocks "gooze.dev/pkg/mutorch/internal/adapter/mocks"
)

func newRunners(t *testing.T, n int) []adapter.TestRunner {
	t.Helper()

	runners := make([]adapter.TestRunner, 0, n)
	for range n {
		runners = append(runners, adaptermocks.NewMockTestRunner(t))
	}

	return runners
}

func TestNewWorkerPool_Validation(t *testing.T) {
	_, err := NewWorkerPool(nil)
	assert.ErrorIs(t, err, ErrEmptyPool)

	runner := adaptermocks.NewMockTestRunner(t)
	_, err = NewWorkerPool([]adapter.TestRunner{runner, runner})
	assert.Error(t, err)

	_, err = NewWorkerPool([]adapter.TestRunner{nil})
	assert.Error(t, err)
}

func TestWorkerPool_AcquireAndRecycle(t *testing.T) {
	pool, err := NewWorkerPool(newRunners(t, 2))
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Size())
	assert.Equal(t, 2, pool.Available())

	first, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	second, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 0, pool.Available())

	require.NoError(t, pool.Recycle(first))
	assert.Equal(t, 1, pool.Available())
	require.NoError(t, pool.Recycle(second))
	assert.Equal(t, 2, pool.Available())
}

func TestWorkerPool_RecycleNotCheckedOut(t *testing.T) {
	runners := newRunners(t, 1)
	pool, err := NewWorkerPool(runners)
	require.NoError(t, err)

	assert.ErrorIs(t, pool.Recycle(runners[0]), ErrWorkerNotCheckedOut, "never acquired")

	runner, err := pool.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, pool.Recycle(runner))
	assert.ErrorIs(t, pool.Recycle(runner), ErrWorkerNotCheckedOut, "recycled twice")

	stranger := adaptermocks.NewMockTestRunner(t)
	assert.ErrorIs(t, pool.Recycle(stranger), ErrWorkerNotCheckedOut, "not a pool member")
	assert.Equal(t, 1, pool.Available())
}

func TestWorkerPool_AcquireBlocksUntilRecycle(t *testing.T) {
	pool, err := NewWorkerPool(newRunners(t, 1))
	require.NoError(t, err)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	acquired := make(chan adapter.TestRunner)

	go func() {
		runner, err := pool.Acquire(context.Background())
		assert.NoError(t, err)
		acquired <- runner
	}()

	select {
	case <-acquired:
		t.Fatal("Acquire returned while the only worker was checked out")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, pool.Recycle(held))

	select {
	case runner := <-acquired:
		assert.Same(t, held, runner)
		require.NoError(t, pool.Recycle(runner))
	case <-time.After(time.Second):
		t.Fatal("Acquire did not return after recycle")
	}
}

func TestWorkerPool_WaitersServedInRequestOrder(t *testing.T) {
	pool, err := NewWorkerPool(newRunners(t, 1))
	require.NoError(t, err)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	const waiters = 5

	order := make(chan int, waiters)

	var wg sync.WaitGroup

	for i := range waiters {
		wg.Add(1)

		go func() {
			defer wg.Done()

			runner, err := pool.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}

			order <- i

			assert.NoError(t, pool.Recycle(runner))
		}()

		// Let waiter i queue up before waiter i+1.
		time.Sleep(20 * time.Millisecond)
	}

	require.NoError(t, pool.Recycle(held))
	wg.Wait()
	close(order)

	got := make([]int, 0, waiters)
	for i := range order {
		got = append(got, i)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestWorkerPool_AcquireCancelled(t *testing.T) {
	pool, err := NewWorkerPool(newRunners(t, 1))
	require.NoError(t, err)

	_, err = pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = pool.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerPool_CloseWaitsAndDisposes(t *testing.T) {
	disposable := adaptermocks.NewMockDisposableTestRunner(t)
	disposable.On("Dispose", mock.Anything).Return(nil).Once()

	plain := adaptermocks.NewMockTestRunner(t)

	pool, err := NewWorkerPool([]adapter.TestRunner{disposable, plain})
	require.NoError(t, err)

	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	closed := make(chan error, 1)

	go func() {
		closed <- pool.Close(context.Background())
	}()

	select {
	case <-closed:
		t.Fatal("Close returned while a worker was checked out")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, pool.Recycle(held))

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Close did not return after the worker was recycled")
	}

	_, err = pool.Acquire(context.Background())
	assert.ErrorIs(t, err, ErrPoolClosed)
	assert.NoError(t, pool.Close(context.Background()), "second close returns the first result")
}

func TestWorkerPool_CloseDisposeError(t *testing.T) {
	disposable := adaptermocks.NewMockDisposableTestRunner(t)
	disposable.On("Dispose", mock.Anything).Return(errors.New("boom")).Once()

	pool, err := NewWorkerPool([]adapter.TestRunner{disposable})
	require.NoError(t, err)

	err = pool.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWorkerPool_CloseCancelled(t *testing.T) {
	pool, err := NewWorkerPool(newRunners(t, 1))
	require.NoError(t, err)

	_, err = pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, pool.Close(ctx), context.DeadlineExceeded)
}
