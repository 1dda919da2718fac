package model

import "fmt"

// MutantStatus is the externally visible classification of a mutant.
type MutantStatus int

const (
	// NoCoverage indicates no test exercises the mutant; it was never run.
	NoCoverage MutantStatus = iota
	// Killed indicates the mutation was detected by tests.
	Killed
	// Survived indicates the mutation was not detected by tests.
	Survived
	// TimedOut indicates the run exceeded its timeout.
	TimedOut
	// RuntimeError indicates the run failed to execute.
	RuntimeError
)

var mutantStatusNames = map[MutantStatus]string{
	NoCoverage:   "no_coverage",
	Killed:       "killed",
	Survived:     "survived",
	TimedOut:     "timed_out",
	RuntimeError: "runtime_error",
}

func (s MutantStatus) String() string {
	if name, ok := mutantStatusNames[s]; ok {
		return name
	}

	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s MutantStatus) MarshalText() ([]byte, error) {
	name, ok := mutantStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown mutant status %d", int(s))
	}

	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *MutantStatus) UnmarshalText(text []byte) error {
	for status, name := range mutantStatusNames {
		if name == string(text) {
			*s = status
			return nil
		}
	}

	return fmt.Errorf("unknown mutant status %q", string(text))
}

// MutantResult is emitted once per mutant, in completion order.
type MutantResult struct {
	Mutant       *Mutant      `yaml:"mutant"`
	Status       MutantStatus `yaml:"status"`
	TestsRan     []string     `yaml:"testsRan,omitempty"`
	StatusReason string       `yaml:"statusReason,omitempty"`
}

// Progress is a snapshot of the progress tracker.
type Progress struct {
	Total       int    `yaml:"total"`
	Tested      int    `yaml:"tested"`
	Survived    int    `yaml:"survived"`
	TimedOut    int    `yaml:"timedOut"`
	PercentDone int    `yaml:"percentDone"`
	ETC         string `yaml:"etc"`
}

// Summary is emitted when a session finishes or aborts.
type Summary struct {
	Progress  Progress `yaml:"progress"`
	Elapsed   string   `yaml:"elapsed"`
	ElapsedMs int64    `yaml:"elapsedMs"`
	Aborted   bool     `yaml:"aborted"`
	Reason    string   `yaml:"reason,omitempty"`
}

// SessionReport is the persisted outcome of a session.
type SessionReport struct {
	Results []MutantResult `yaml:"results"`
	Score   float64        `yaml:"score"`
	Summary Summary        `yaml:"summary"`
}
