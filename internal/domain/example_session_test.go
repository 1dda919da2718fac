package domain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gooze.dev/pkg/mutorch/internal/adapter"
	m "gooze.dev/pkg/mutorch/internal/model"
)

var exampleDir = filepath.Join("..", "..", "examples", "calc")

func TestExampleSession_MatchAndDiff(t *testing.T) {
	ctx := context.Background()
	store := adapter.NewSessionStore(adapter.NewLocalSourceFSAdapter())

	session, err := store.Load(ctx, m.Path(filepath.Join(exampleDir, "mutorch-session.yaml")))
	require.NoError(t, err)
	require.Len(t, session.Mutants, 4)

	matched, err := NewMatcher().Match(ctx, session.Baseline, session.Mutants)
	require.NoError(t, err)

	assert.Equal(t, []string{"TestAdd"}, matched[0].TestFilter)
	assert.Equal(t, []string{"TestIsPositive"}, matched[1].TestFilter)
	assert.Equal(t, []string{"TestIsPositive"}, matched[2].TestFilter)
	assert.False(t, matched[3].CoveredByTests)

	source, err := os.ReadFile(filepath.Join(exampleDir, "calc.go"))
	require.NoError(t, err)

	want := map[string]string{
		"1": "+\treturn a - b",
		"2": "+\treturn n >= 0",
		"3": "+\treturn n != 0",
		"4": "+\tif n <= 0 {",
	}

	for _, mutant := range session.Mutants {
		diff, err := MutantDiff(source, mutant)
		require.NoError(t, err, mutant.ID)
		assert.Contains(t, diff, want[mutant.ID], mutant.ID)
	}
}
