package domain

import (
	m "gooze.dev/pkg/mutorch/internal/model"
	"gooze.dev/pkg/mutorch/pkg/spill"
)

// mutationScoreFromResults returns detected / (detected + undetected) where
// killed and timed out mutants count as detected. Runtime errors are left out
// of the denominator. A session with nothing to score has a score of 1.
func mutationScoreFromResults(results spill.Spill[m.MutantResult]) (float64, error) {
	detected := 0
	total := 0

	err := results.Range(func(_ uint64, result m.MutantResult) error {
		switch result.Status {
		case m.Killed, m.TimedOut:
			detected++
			total++
		case m.Survived, m.NoCoverage:
			total++
		case m.RuntimeError:
		}

		return nil
	})
	if err != nil {
		return 0.0, err
	}

	if total == 0 {
		return 1.0, nil
	}

	return float64(detected) / float64(total), nil
}
