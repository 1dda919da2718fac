// Package domain contains the mutation test orchestration core: coverage
// matching, the worker pool, the executor and progress bookkeeping.
package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	m "gooze.dev/pkg/mutorch/internal/model"
)

// ErrUnknownTest is returned when coverage data names a test that is not part
// of the baseline run. The coverage producer broke its contract; the session
// cannot continue.
var ErrUnknownTest = errors.New("coverage references a test missing from the baseline run")

// CoverageIndex maps mutant ids to the baseline tests that hit them.
type CoverageIndex struct {
	tests       []m.TestResult
	totalTimeMs int64
	hasCoverage bool
	static      m.CoverageHits
	byMutant    map[string][]int // indexes into tests, in baseline order
}

// NewCoverageIndex builds the index for a baseline run.
func NewCoverageIndex(baseline m.BaselineRun) (*CoverageIndex, error) {
	index := &CoverageIndex{
		tests:       baseline.Tests,
		totalTimeMs: baseline.TotalTimeSpentMs(),
	}

	if baseline.Coverage == nil {
		return index, nil
	}

	index.hasCoverage = true
	index.static = baseline.Coverage.Static
	index.byMutant = make(map[string][]int)

	known := make(map[string]struct{}, len(baseline.Tests))
	for _, test := range baseline.Tests {
		known[test.ID] = struct{}{}
	}

	for _, testID := range slices.Sorted(maps.Keys(baseline.Coverage.PerTest)) {
		if _, ok := known[testID]; !ok {
			return nil, fmt.Errorf("%w: %q (baseline has %d tests)", ErrUnknownTest, testID, len(baseline.Tests))
		}
	}

	for i, test := range baseline.Tests {
		for mutantID, hits := range baseline.Coverage.PerTest[test.ID] {
			if hits > 0 {
				index.byMutant[mutantID] = append(index.byMutant[mutantID], i)
			}
		}
	}

	return index, nil
}

// HasCoverage reports whether coverage analysis data was available.
func (ci *CoverageIndex) HasCoverage() bool {
	return ci.hasCoverage
}

// TotalTimeSpentMs is the duration of the whole baseline run.
func (ci *CoverageIndex) TotalTimeSpentMs() int64 {
	return ci.totalTimeMs
}

// StaticHit reports whether the mutant was hit outside of any test.
func (ci *CoverageIndex) StaticHit(mutantID string) bool {
	return ci.static[mutantID] > 0
}

// TestsFor returns the baseline tests that hit the mutant, in baseline order.
func (ci *CoverageIndex) TestsFor(mutantID string) []m.TestResult {
	positions := ci.byMutant[mutantID]
	if len(positions) == 0 {
		return nil
	}

	tests := make([]m.TestResult, 0, len(positions))
	for _, i := range positions {
		tests = append(tests, ci.tests[i])
	}

	return tests
}

// Match decides how a single mutant has to be tested.
func (ci *CoverageIndex) Match(mutant *m.Mutant) m.MutantTestCoverage {
	if !ci.hasCoverage || ci.StaticHit(mutant.ID) {
		return m.MutantTestCoverage{
			Mutant:           mutant,
			CoveredByTests:   true,
			EstimatedNetTime: ci.totalTimeMs,
		}
	}

	tests := ci.TestsFor(mutant.ID)
	if len(tests) == 0 {
		return m.MutantTestCoverage{Mutant: mutant}
	}

	filter := make([]string, 0, len(tests))

	var estimated int64

	for _, test := range tests {
		filter = append(filter, test.ID)
		estimated += test.TimeSpentMs
	}

	return m.MutantTestCoverage{
		Mutant:           mutant,
		CoveredByTests:   true,
		TestFilter:       filter,
		EstimatedNetTime: estimated,
	}
}
