package domain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/mutorch/internal/adapter"
	adaptermocks "gooze.dev/pkg/mutorch/internal/adapter/mocks"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// recordingReporter keeps every event it receives.
type recordingReporter struct {
	mu        sync.Mutex
	results   []m.MutantResult
	progress  []m.Progress
	summaries []m.Summary
}

func (r *recordingReporter) OnMutantTested(_ context.Context, result m.MutantResult, progress m.Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.results = append(r.results, result)
	r.progress = append(r.progress, progress)
}

func (r *recordingReporter) OnAllMutantsTested(_ context.Context, summary m.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.summaries = append(r.summaries, summary)
}

// funcRunner is a TestRunner backed by a function.
type funcRunner struct {
	name  string
	calls atomic.Int32
	run   func(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error)
}

func (f *funcRunner) RunMutant(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error) {
	f.calls.Add(1)
	return f.run(ctx, options)
}

func survive(context.Context, m.MutantRunOptions) (m.MutantRunResult, error) {
	return m.MutantRunResult{Status: m.RunSurvived}, nil
}

func covered(mutant *m.Mutant, filter ...string) m.MutantTestCoverage {
	return m.MutantTestCoverage{Mutant: mutant, CoveredByTests: true, TestFilter: filter, EstimatedNetTime: 10}
}

func newTestExecutor(t *testing.T, reporter ResultReporter, timeouts TimeoutConfig, runners ...adapter.TestRunner) (*Executor, *WorkerPool) {
	t.Helper()

	pool, err := NewWorkerPool(runners)
	require.NoError(t, err)

	timer := NewTimer()

	return NewExecutor(pool, NewProgressTracker(timer), timer, reporter, timeouts), pool
}

func TestTimeoutConfig_For(t *testing.T) {
	config := TimeoutConfig{OverheadMs: 42, TimeoutFactor: 1.5, BaseTimeoutMs: 27}
	assert.Equal(t, 84*time.Millisecond, config.For(10))

	assert.Equal(t, 5000*time.Millisecond, TimeoutConfig{BaseTimeoutMs: 5000, TimeoutFactor: 1.5}.For(0))
}

func TestExecutor_PassesComputedTimeout(t *testing.T) {
	mutant := &m.Mutant{ID: "1"}
	runner := adaptermocks.NewMockTestRunner(t)
	runner.On("RunMutant", mock.Anything, m.MutantRunOptions{
		ActiveMutant: mutant,
		TestFilter:   []string{"spec1"},
		Timeout:      84 * time.Millisecond,
	}).Return(m.MutantRunResult{Status: m.RunKilled}, nil).Once()

	executor, _ := newTestExecutor(t, &recordingReporter{},
		TimeoutConfig{OverheadMs: 42, TimeoutFactor: 1.5, BaseTimeoutMs: 27}, runner)

	results, _, err := executor.Execute(context.Background(), []m.MutantTestCoverage{covered(mutant, "spec1")})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, m.Killed, results[0].Status)
}

func TestExecutor_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		run        m.MutantRunResult
		runErr     error
		wantStatus m.MutantStatus
		wantReason string
	}{
		{"killed", m.MutantRunResult{Status: m.RunKilled, FailureMessage: "expected 3"}, nil, m.Killed, "expected 3"},
		{"survived", m.MutantRunResult{Status: m.RunSurvived}, nil, m.Survived, ""},
		{"timeout", m.MutantRunResult{Status: m.RunTimeout}, nil, m.TimedOut, ""},
		{"runtime error", m.MutantRunResult{Status: m.RunError, ErrorMessage: "panic"}, nil, m.RuntimeError, "panic"},
		{"worker failure", m.MutantRunResult{}, errors.New("process died"), m.RuntimeError, "process died"},
		{"unknown status", m.MutantRunResult{Status: m.RunStatus(99)}, nil, m.RuntimeError, "unknown run status 99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &funcRunner{run: func(context.Context, m.MutantRunOptions) (m.MutantRunResult, error) {
				return tt.run, tt.runErr
			}}
			reporter := &recordingReporter{}
			executor, pool := newTestExecutor(t, reporter, TimeoutConfig{}, runner)

			results, summary, err := executor.Execute(context.Background(), []m.MutantTestCoverage{covered(&m.Mutant{ID: "1"})})
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, tt.wantStatus, results[0].Status)
			assert.Equal(t, tt.wantReason, results[0].StatusReason)

			assert.Equal(t, 1, pool.Available(), "worker is recycled whatever the outcome")
			assert.Equal(t, 1, summary.Progress.Tested)
			assert.False(t, summary.Aborted)
			require.Len(t, reporter.results, 1)
		})
	}
}

func TestExecutor_EachWorkerRunsOneMutant(t *testing.T) {
	var started sync.WaitGroup

	started.Add(2)

	// Each run waits for the other so both workers are checked out at once.
	run := func(_ context.Context, _ m.MutantRunOptions) (m.MutantRunResult, error) {
		started.Done()
		started.Wait()

		return m.MutantRunResult{Status: m.RunSurvived}, nil
	}

	var (
		mu   sync.Mutex
		seen = map[string]string{}
	)

	record := func(name string) func(context.Context, m.MutantRunOptions) (m.MutantRunResult, error) {
		return func(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error) {
			mu.Lock()
			seen[name] = options.ActiveMutant.ID
			mu.Unlock()

			return run(ctx, options)
		}
	}

	worker1 := &funcRunner{name: "worker1"}
	worker1.run = record("worker1")
	worker2 := &funcRunner{name: "worker2"}
	worker2.run = record("worker2")

	reporter := &recordingReporter{}
	executor, pool := newTestExecutor(t, reporter, TimeoutConfig{}, worker1, worker2)

	mutantA := &m.Mutant{ID: "A"}
	mutantB := &m.Mutant{ID: "B"}

	results, summary, err := executor.Execute(context.Background(), []m.MutantTestCoverage{covered(mutantA), covered(mutantB)})
	require.NoError(t, err)

	assert.Equal(t, int32(1), worker1.calls.Load())
	assert.Equal(t, int32(1), worker2.calls.Load())
	assert.ElementsMatch(t, []string{"A", "B"}, []string{seen["worker1"], seen["worker2"]})

	require.Len(t, results, 2)
	for _, result := range results {
		assert.Equal(t, m.Survived, result.Status)
	}

	assert.Equal(t, 2, summary.Progress.Survived)
	assert.Equal(t, 100, summary.Progress.PercentDone)
	assert.Equal(t, 2, pool.Available())
}

func TestExecutor_SingleWorkerSerializesRuns(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)

	runner := &funcRunner{run: func(_ context.Context, options m.MutantRunOptions) (m.MutantRunResult, error) {
		mu.Lock()
		events = append(events, "start "+options.ActiveMutant.ID)
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		events = append(events, "end "+options.ActiveMutant.ID)
		mu.Unlock()

		return m.MutantRunResult{Status: m.RunKilled}, nil
	}}

	executor, pool := newTestExecutor(t, &recordingReporter{}, TimeoutConfig{}, runner)

	_, _, err := executor.Execute(context.Background(), []m.MutantTestCoverage{
		covered(&m.Mutant{ID: "1"}),
		covered(&m.Mutant{ID: "2"}),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"start 1", "end 1", "start 2", "end 2"}, events)
	assert.Equal(t, 1, pool.Available())
}

func TestExecutor_UncoveredMutantIsNeverDispatched(t *testing.T) {
	// No expectations: any RunMutant call fails the test.
	runner := adaptermocks.NewMockTestRunner(t)
	reporter := &recordingReporter{}
	executor, pool := newTestExecutor(t, reporter, TimeoutConfig{}, runner)

	mutant := &m.Mutant{ID: "1"}

	results, summary, err := executor.Execute(context.Background(), []m.MutantTestCoverage{{Mutant: mutant}})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Same(t, mutant, results[0].Mutant)
	assert.Equal(t, m.NoCoverage, results[0].Status)
	assert.Equal(t, 1, pool.Available())
	assert.Equal(t, 0, summary.Progress.Total)
	assert.Equal(t, 0, summary.Progress.Tested)
	runner.AssertNotCalled(t, "RunMutant", mock.Anything, mock.Anything)
}

func TestExecutor_MixedCoverage(t *testing.T) {
	runner := &funcRunner{run: survive}
	reporter := &recordingReporter{}
	executor, _ := newTestExecutor(t, reporter, TimeoutConfig{}, runner)

	matched := []m.MutantTestCoverage{
		covered(&m.Mutant{ID: "1"}),
		{Mutant: &m.Mutant{ID: "2"}},
		covered(&m.Mutant{ID: "3"}),
	}

	results, summary, err := executor.Execute(context.Background(), matched)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, int32(2), runner.calls.Load())

	assert.Equal(t, 2, summary.Progress.Total)
	assert.Equal(t, 2, summary.Progress.Tested)
	assert.Equal(t, 2, summary.Progress.Survived)
	require.Len(t, reporter.summaries, 1)
	assert.Equal(t, summary, reporter.summaries[0])

	last := reporter.progress[len(reporter.progress)-1]
	assert.Equal(t, 100, last.PercentDone)
}

func TestExecutor_ConcurrencyIsBoundedByPoolSize(t *testing.T) {
	const workers = 3

	var (
		inFlight atomic.Int32
		peak     atomic.Int32
	)

	run := func(context.Context, m.MutantRunOptions) (m.MutantRunResult, error) {
		current := inFlight.Add(1)
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)

		return m.MutantRunResult{Status: m.RunKilled}, nil
	}

	runners := make([]adapter.TestRunner, 0, workers)
	for range workers {
		runners = append(runners, &funcRunner{run: run})
	}

	executor, pool := newTestExecutor(t, &recordingReporter{}, TimeoutConfig{}, runners...)

	matched := make([]m.MutantTestCoverage, 0, 12)
	for i := range 12 {
		matched = append(matched, covered(&m.Mutant{ID: fmt.Sprint(i)}))
	}

	results, summary, err := executor.Execute(context.Background(), matched)
	require.NoError(t, err)

	assert.Len(t, results, 12)
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Equal(t, 12, summary.Progress.Tested)
	assert.Equal(t, workers, pool.Available())
}

func TestExecutor_CancelledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := &funcRunner{run: func(ctx context.Context, _ m.MutantRunOptions) (m.MutantRunResult, error) {
		cancel()
		<-ctx.Done()

		return m.MutantRunResult{}, ctx.Err()
	}}

	reporter := &recordingReporter{}
	executor, pool := newTestExecutor(t, reporter, TimeoutConfig{}, runner)

	results, summary, err := executor.Execute(ctx, []m.MutantTestCoverage{
		covered(&m.Mutant{ID: "1"}),
		covered(&m.Mutant{ID: "2"}),
	})
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, results, "cancelled runs are not reported as runtime errors")
	assert.True(t, summary.Aborted)
	assert.NotEmpty(t, summary.Reason)
	require.Len(t, reporter.summaries, 1, "summary is emitted for aborted sessions")
	assert.Equal(t, 1, pool.Available())
}
