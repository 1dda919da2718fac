package model

import "time"

// RunStatus is the raw outcome a worker reports for a single mutant run.
type RunStatus int

const (
	// RunKilled means a targeted test failed because of the mutant.
	RunKilled RunStatus = iota
	// RunSurvived means all targeted tests passed.
	RunSurvived
	// RunTimeout means the run hit its deadline.
	RunTimeout
	// RunError means the run itself could not complete.
	RunError
)

func (s RunStatus) String() string {
	switch s {
	case RunKilled:
		return "killed"
	case RunSurvived:
		return "survived"
	case RunTimeout:
		return "timeout"
	case RunError:
		return "error"
	default:
		return "unknown"
	}
}

// MutantRunOptions is the request sent to a worker.
type MutantRunOptions struct {
	ActiveMutant *Mutant
	TestFilter   []string // nil means run every test
	Timeout      time.Duration
}

// MutantRunResult is the response of a worker.
type MutantRunResult struct {
	Status         RunStatus
	TestsRan       []string
	FailureMessage string // set for RunKilled
	ErrorMessage   string // set for RunError
}
