package domain

import (
	"context"
	"fmt"
	"log/slog"

	m "gooze.dev/pkg/mutorch/internal/model"
)

// Matcher selects the tests relevant to each mutant.
type Matcher interface {
	// Match returns one coverage decision per mutant, in the order of mutants.
	Match(ctx context.Context, baseline m.BaselineRun, mutants []*m.Mutant) ([]m.MutantTestCoverage, error)
}

type matcher struct{}

// NewMatcher constructs a Matcher.
func NewMatcher() Matcher {
	return &matcher{}
}

func (mt *matcher) Match(ctx context.Context, baseline m.BaselineRun, mutants []*m.Mutant) ([]m.MutantTestCoverage, error) {
	index, err := NewCoverageIndex(baseline)
	if err != nil {
		slog.Error("Failed to index coverage", "error", err)
		return nil, fmt.Errorf("index coverage: %w", err)
	}

	matched := make([]m.MutantTestCoverage, 0, len(mutants))
	uncovered := 0

	for _, mutant := range mutants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		coverage := index.Match(mutant)
		if !coverage.CoveredByTests {
			uncovered++
		}

		matched = append(matched, coverage)
	}

	slog.Info("Matched mutants with tests",
		"mutants", len(mutants),
		"tests", len(baseline.Tests),
		"coverageAnalysis", index.HasCoverage(),
		"uncovered", uncovered,
	)

	return matched, nil
}
