package domain

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// TimerOption configures a Timer.
type TimerOption func(*Timer)

// WithClock replaces the wall clock used by the timer.
func WithClock(now Clock) TimerOption {
	return func(t *Timer) {
		t.now = now
	}
}

// Timer measures elapsed time for one session, with optional named marks.
//
// Marks are written at session boundaries only; reads may come from any goroutine.
type Timer struct {
	mu    sync.RWMutex
	now   Clock
	start time.Time
	marks map[string]time.Time
}

// NewTimer creates a started timer.
func NewTimer(opts ...TimerOption) *Timer {
	t := &Timer{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}

	t.Reset()

	return t
}

// Reset restarts the timer and clears every mark.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.start = t.now()
	t.marks = make(map[string]time.Time)
}

// Mark records the current time under name.
func (t *Timer) Mark(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.marks[name] = t.now()
}

// ElapsedMs returns the milliseconds since the named mark, or since the start
// when sinceMark is empty or was never recorded.
func (t *Timer) ElapsedMs(sinceMark string) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	from := t.start
	if mark, ok := t.marks[sinceMark]; ok && sinceMark != "" {
		from = mark
	}

	return t.now().Sub(from).Milliseconds()
}

// ElapsedSeconds returns ElapsedMs rounded down to whole seconds.
func (t *Timer) ElapsedSeconds(sinceMark string) int64 {
	return t.ElapsedMs(sinceMark) / 1000
}

// HumanReadableElapsed formats the elapsed time, e.g. "1 minute 5 seconds".
func (t *Timer) HumanReadableElapsed(sinceMark string) string {
	return HumanReadable(t.ElapsedSeconds(sinceMark))
}

// HumanReadable formats seconds as "X minute(s) Y second(s)", leaving out the
// minutes when there are none.
func HumanReadable(seconds int64) string {
	minutes := seconds / 60
	rest := seconds % 60

	if minutes == 0 {
		return plural(rest, "second")
	}

	return plural(minutes, "minute") + " " + plural(rest, "second")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}
