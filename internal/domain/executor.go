package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// TimeoutConfig holds the session settings used to derive per-mutant timeouts.
type TimeoutConfig struct {
	OverheadMs    int64
	TimeoutFactor float64
	BaseTimeoutMs int64
}

// For returns the timeout of a mutant whose covering tests take estimatedNetTimeMs.
// Only the estimated time is scaled by the factor.
func (c TimeoutConfig) For(estimatedNetTimeMs int64) time.Duration {
	ms := float64(c.OverheadMs) + float64(estimatedNetTimeMs)*c.TimeoutFactor + float64(c.BaseTimeoutMs)

	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// ResultReporter receives the executor's events. Calls are serialized.
type ResultReporter interface {
	// OnMutantTested is called once per mutant, in completion order.
	OnMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress)
	// OnAllMutantsTested is called once when the run ends, also when it aborts.
	OnAllMutantsTested(ctx context.Context, summary m.Summary)
}

// Executor runs matched mutants on a worker pool.
type Executor struct {
	pool     *WorkerPool
	tracker  *ProgressTracker
	timer    *Timer
	reporter ResultReporter
	timeouts TimeoutConfig
}

// NewExecutor wires an Executor from its collaborators.
func NewExecutor(pool *WorkerPool, tracker *ProgressTracker, timer *Timer, reporter ResultReporter, timeouts TimeoutConfig) *Executor {
	return &Executor{
		pool:     pool,
		tracker:  tracker,
		timer:    timer,
		reporter: reporter,
		timeouts: timeouts,
	}
}

// collector serializes result bookkeeping coming from concurrent runs.
type collector struct {
	mu       sync.Mutex
	results  []m.MutantResult
	tracker  *ProgressTracker
	reporter ResultReporter
}

func (c *collector) add(ctx context.Context, result m.MutantResult, executed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, result)
	c.tracker.OnMutantTested(result.Status, executed)
	c.reporter.OnMutantTested(ctx, result, c.tracker.Snapshot())
}

// Execute tests every matched mutant and blocks until all of them are resolved.
// At most pool size mutants run at the same time. Results are returned in
// completion order. Only integration failures (pool misuse, cancelled ctx)
// abort the run; the summary is emitted either way.
func (e *Executor) Execute(ctx context.Context, matched []m.MutantTestCoverage) ([]m.MutantResult, m.Summary, error) {
	e.tracker.Start(matched)

	sink := &collector{
		results:  make([]m.MutantResult, 0, len(matched)),
		tracker:  e.tracker,
		reporter: e.reporter,
	}

	slog.Info("Starting mutation test run", "mutants", len(matched), "workers", e.pool.Size())

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.pool.Size())

	for _, coverage := range matched {
		if groupCtx.Err() != nil {
			break
		}

		if !coverage.CoveredByTests {
			slog.Debug("Mutant has no coverage", "mutant", coverage.Mutant.ID)
			sink.add(groupCtx, m.MutantResult{Mutant: coverage.Mutant, Status: m.NoCoverage}, false)

			continue
		}

		group.Go(func() error {
			return e.runMutant(groupCtx, coverage, sink)
		})
	}

	err := group.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := e.summarize(err)
	e.reporter.OnAllMutantsTested(ctx, summary)

	return sink.results, summary, err
}

func (e *Executor) runMutant(ctx context.Context, coverage m.MutantTestCoverage, sink *collector) (err error) {
	runner, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire worker for mutant %s: %w", coverage.Mutant.ID, err)
	}

	defer func() {
		if recycleErr := e.pool.Recycle(runner); recycleErr != nil {
			err = errors.Join(err, fmt.Errorf("recycle worker: %w", recycleErr))
		}
	}()

	options := m.MutantRunOptions{
		ActiveMutant: coverage.Mutant,
		TestFilter:   coverage.TestFilter,
		Timeout:      e.timeouts.For(coverage.EstimatedNetTime),
	}

	slog.Debug("Running mutant", "mutant", coverage.Mutant.ID, "tests", len(coverage.TestFilter),
		"allTests", coverage.RunsAllTests(), "timeout", options.Timeout)

	runResult, runErr := runner.RunMutant(ctx, options)
	if runErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	result := classify(coverage.Mutant, runResult, runErr)
	slog.Debug("Mutant tested", "mutant", coverage.Mutant.ID, "status", result.Status)
	sink.add(ctx, result, true)

	return nil
}

// classify maps a worker outcome onto the reported mutant status.
func classify(mutant *m.Mutant, run m.MutantRunResult, runErr error) m.MutantResult {
	if runErr != nil {
		slog.Warn("Worker failed to run mutant", "mutant", mutant.ID, "error", runErr)
		return m.MutantResult{Mutant: mutant, Status: m.RuntimeError, StatusReason: runErr.Error()}
	}

	result := m.MutantResult{Mutant: mutant, TestsRan: run.TestsRan}

	switch run.Status {
	case m.RunKilled:
		result.Status = m.Killed
		result.StatusReason = run.FailureMessage
	case m.RunSurvived:
		result.Status = m.Survived
	case m.RunTimeout:
		result.Status = m.TimedOut
	case m.RunError:
		result.Status = m.RuntimeError
		result.StatusReason = run.ErrorMessage
	default:
		result.Status = m.RuntimeError
		result.StatusReason = fmt.Sprintf("unknown run status %d", int(run.Status))
	}

	return result
}

func (e *Executor) summarize(err error) m.Summary {
	summary := m.Summary{
		Progress:  e.tracker.Snapshot(),
		Elapsed:   e.timer.HumanReadableElapsed(""),
		ElapsedMs: e.timer.ElapsedMs(""),
	}

	if err != nil {
		summary.Aborted = true
		summary.Reason = err.Error()
		slog.Error("Mutation test run aborted", "error", err, "tested", summary.Progress.Tested,
			"total", summary.Progress.Total, "elapsed", summary.Elapsed)

		return summary
	}

	slog.Info("Done in "+summary.Elapsed, "tested", summary.Progress.Tested, "survived", summary.Progress.Survived,
		"timedOut", summary.Progress.TimedOut)

	return summary
}
