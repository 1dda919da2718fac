package model

// TestStatus is the outcome of a test in the baseline run.
type TestStatus string

const (
	// TestSuccess marks a passing test.
	TestSuccess TestStatus = "success"
	// TestFailed marks a failing test.
	TestFailed TestStatus = "failed"
	// TestSkipped marks a test that did not run.
	TestSkipped TestStatus = "skipped"
)

// TestResult is one test of the baseline (unmutated) run.
type TestResult struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	TimeSpentMs int64      `yaml:"timeSpentMs"`
	Status      TestStatus `yaml:"status"`
}

// CoverageHits maps a mutant id to the number of times its code was hit.
type CoverageHits map[string]int

// CoverageData is the instrumentation output of the baseline run.
//
// Static holds hits recorded outside any test (e.g. while loading a module);
// PerTest holds hits recorded while a given test id was running.
type CoverageData struct {
	Static  CoverageHits            `yaml:"static"`
	PerTest map[string]CoverageHits `yaml:"perTest"`
}

// BaselineRun is the full result of the initial test run.
// Coverage is nil when coverage analysis was disabled.
type BaselineRun struct {
	Tests    []TestResult  `yaml:"tests"`
	Coverage *CoverageData `yaml:"coverage,omitempty"`
}

// TotalTimeSpentMs sums the duration of every baseline test.
func (b BaselineRun) TotalTimeSpentMs() int64 {
	var total int64
	for _, test := range b.Tests {
		total += test.TimeSpentMs
	}

	return total
}

// SessionInput is everything a mutation testing session consumes.
type SessionInput struct {
	Mutants  []*Mutant   `yaml:"mutants"`
	Baseline BaselineRun `yaml:"baseline"`
}
