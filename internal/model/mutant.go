// Package model defines the data structures for mutation test orchestration.
package model

// Path represents a file system path.
type Path string

// Position is a line/column pair inside a source file.
type Position struct {
	Line   int `yaml:"line"`
	Column int `yaml:"column"`
}

// Location spans the mutated code.
type Location struct {
	Start Position `yaml:"start"`
	End   Position `yaml:"end"`
}

// Mutant is a single candidate source alteration produced by a mutator.
// Mutants are created once and shared by pointer; nothing downstream mutates them.
type Mutant struct {
	ID          string   `yaml:"id"`
	MutatorName string   `yaml:"mutatorName"`
	FileName    Path     `yaml:"fileName"`
	Range       [2]int   `yaml:"range,flow"` // byte offsets [start, end) of the replaced code
	Replacement string   `yaml:"replacement"`
	Location    Location `yaml:"location"`
}

// MutantTestCoverage is the matcher's decision for one mutant.
//
// TestFilter is nil when every test must run (no coverage data or a static hit).
type MutantTestCoverage struct {
	Mutant           *Mutant
	CoveredByTests   bool
	TestFilter       []string
	EstimatedNetTime int64 // milliseconds
}

// RunsAllTests reports whether the mutant has to be tested against the whole suite.
func (c MutantTestCoverage) RunsAllTests() bool {
	return c.CoveredByTests && c.TestFilter == nil
}
