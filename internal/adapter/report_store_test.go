package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	m "gooze.dev/pkg/mutorch/internal/model"
)

func TestReportStore_SaveAndLoad(t *testing.T) {
	store := NewReportStore(NewLocalSourceFSAdapter())
	dir := m.Path(filepath.Join(t.TempDir(), "reports"))

	mutant := &m.Mutant{ID: "1", MutatorName: "BooleanLiteral", FileName: "a.go", Range: [2]int{3, 7}}
	report := m.SessionReport{
		Results: []m.MutantResult{
			{Mutant: mutant, Status: m.Survived, TestsRan: []string{"spec1"}},
			{Mutant: &m.Mutant{ID: "2"}, Status: m.NoCoverage},
		},
		Score: 0.5,
		Summary: m.Summary{
			Progress:  m.Progress{Total: 1, Tested: 1, Survived: 1, PercentDone: 100},
			Elapsed:   "3 seconds",
			ElapsedMs: 3000,
		},
	}

	require.NoError(t, store.SaveReport(context.Background(), dir, report))

	raw, err := os.ReadFile(filepath.Join(string(dir), ReportFileName))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "status: survived")
	assert.Contains(t, string(raw), "status: no_coverage")

	loaded, err := store.LoadReport(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, report, loaded)
}

func TestReportStore_LoadMissing(t *testing.T) {
	store := NewReportStore(NewLocalSourceFSAdapter())

	_, err := store.LoadReport(context.Background(), m.Path(t.TempDir()))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReportStore_LoadUnknownStatus(t *testing.T) {
	dir := t.TempDir()
	content := "results:\n  - mutant: {id: '1'}\n    status: exploded\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReportFileName), []byte(content), 0o600))

	store := NewReportStore(NewLocalSourceFSAdapter())

	_, err := store.LoadReport(context.Background(), m.Path(dir))
	require.Error(t, err)
}
