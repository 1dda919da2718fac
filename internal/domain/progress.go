package domain

import (
	"log/slog"
	"math"
	"sync"

	m "gooze.dev/pkg/mutorch/internal/model"
)

// ETCNotAvailable is reported while no estimate can be made.
const ETCNotAvailable = "n/a"

// progressMark is the timer mark set when mutants start being tested.
const progressMark = "mutation-testing"

// ProgressTracker counts tested mutants and estimates the time to completion.
// It is safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	timer    *Timer
	total    int
	tested   int
	survived int
	timedOut int
}

// NewProgressTracker creates a tracker reading elapsed time from timer.
func NewProgressTracker(timer *Timer) *ProgressTracker {
	return &ProgressTracker{timer: timer}
}

// Start resets the counters for a new batch of matched mutants. Only mutants
// covered by tests count towards the total since the others never reach a worker.
func (p *ProgressTracker) Start(matched []m.MutantTestCoverage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = 0
	p.tested = 0
	p.survived = 0
	p.timedOut = 0

	for _, coverage := range matched {
		if coverage.CoveredByTests {
			p.total++
		}
	}

	p.timer.Mark(progressMark)
}

// OnMutantTested records the outcome of one mutant. executed is false for
// mutants that were resolved without a worker.
func (p *ProgressTracker) OnMutantTested(status m.MutantStatus, executed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if executed {
		if p.tested >= p.total {
			slog.Warn("Progress update after all mutants were tested", "status", status, "total", p.total)
			return
		}

		p.tested++
	}

	switch status {
	case m.Survived:
		p.survived++
	case m.TimedOut:
		p.timedOut++
	case m.NoCoverage, m.Killed, m.RuntimeError:
	}
}

// Done reports whether every executable mutant has been tested.
func (p *ProgressTracker) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.tested == p.total
}

// PercentDone returns the whole percentage of tested mutants.
func (p *ProgressTracker) PercentDone() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.percentDone()
}

// ETC returns the human readable estimated time to completion.
func (p *ProgressTracker) ETC() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.etc()
}

// Snapshot returns a consistent copy of the counters.
func (p *ProgressTracker) Snapshot() m.Progress {
	p.mu.Lock()
	defer p.mu.Unlock()

	return m.Progress{
		Total:       p.total,
		Tested:      p.tested,
		Survived:    p.survived,
		TimedOut:    p.timedOut,
		PercentDone: p.percentDone(),
		ETC:         p.etc(),
	}
}

func (p *ProgressTracker) percentDone() int {
	if p.total == 0 {
		return 0
	}

	return p.tested * 100 / p.total
}

func (p *ProgressTracker) etc() string {
	if p.tested == 0 {
		return ETCNotAvailable
	}

	perMutant := float64(p.timer.ElapsedSeconds(progressMark)) / float64(p.tested)
	remaining := math.Floor(perMutant * float64(p.total-p.tested))

	if math.IsNaN(remaining) || math.IsInf(remaining, 0) || remaining <= 0 {
		return ETCNotAvailable
	}

	return HumanReadable(int64(remaining))
}
