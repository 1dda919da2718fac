package domain

import (
	"errors"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// ErrInvalidRange is returned when a mutant's byte range does not fit its source.
var ErrInvalidRange = errors.New("mutant range out of bounds")

const diffContextLines = 2

// ApplyMutant returns source with the mutant's range replaced.
func ApplyMutant(source []byte, mutant *m.Mutant) ([]byte, error) {
	start, end := mutant.Range[0], mutant.Range[1]
	if start < 0 || end < start || end > len(source) {
		return nil, fmt.Errorf("%w: mutant %s range [%d, %d) with %d bytes of source",
			ErrInvalidRange, mutant.ID, start, end, len(source))
	}

	mutated := make([]byte, 0, len(source)-(end-start)+len(mutant.Replacement))
	mutated = append(mutated, source[:start]...)
	mutated = append(mutated, mutant.Replacement...)
	mutated = append(mutated, source[end:]...)

	return mutated, nil
}

// MutantDiff renders the mutant as a unified diff against source.
func MutantDiff(source []byte, mutant *m.Mutant) (string, error) {
	mutated, err := ApplyMutant(source, mutant)
	if err != nil {
		return "", err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(source)),
		B:        difflib.SplitLines(string(mutated)),
		FromFile: string(mutant.FileName),
		ToFile:   string(mutant.FileName) + " (" + mutant.MutatorName + ")",
		Context:  diffContextLines,
	})
	if err != nil {
		return "", fmt.Errorf("diff mutant %s: %w", mutant.ID, err)
	}

	return diff, nil
}
