package controller

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	m "gooze.dev/pkg/mutorch/internal/model"
)

const allTestsLabel = "all"

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(_ context.Context) {}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(_ context.Context) {}

// DisplayMatches prints which tests cover each mutant.
func (s *SimpleUI) DisplayMatches(ctx context.Context, matched []m.MutantTestCoverage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderMatchTable(matched))

	return nil
}

func renderMatchTable(matched []m.MutantTestCoverage) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Mutant", "Mutator", "File", "Tests", "Est. time"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_LEFT,
		tablewriter.ALIGN_RIGHT,
	})

	covered := 0

	var totalMs int64

	for _, coverage := range matched {
		if coverage.CoveredByTests {
			covered++
			totalMs += coverage.EstimatedNetTime
		}

		table.Append([]string{
			coverage.Mutant.ID,
			coverage.Mutant.MutatorName,
			locationLabel(coverage.Mutant),
			testsLabel(coverage),
			fmt.Sprintf("%dms", coverage.EstimatedNetTime),
		})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total %d", len(matched)),
		"",
		fmt.Sprintf("Uncovered %d", len(matched)-covered),
		fmt.Sprintf("Covered %d", covered),
		fmt.Sprintf("%dms", totalMs),
	})

	table.Render()

	return tableBuffer.String()
}

func testsLabel(coverage m.MutantTestCoverage) string {
	switch {
	case !coverage.CoveredByTests:
		return "-"
	case coverage.RunsAllTests():
		return allTestsLabel
	default:
		return strings.Join(coverage.TestFilter, ", ")
	}
}

func locationLabel(mutant *m.Mutant) string {
	if mutant.Location.Start.Line == 0 {
		return string(mutant.FileName)
	}

	return fmt.Sprintf("%s:%d", mutant.FileName, mutant.Location.Start.Line)
}

// DisplayConcurrencyInfo shows concurrency settings.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, workers int, mutants int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running %d mutants with %d worker(s)\n", mutants, workers)
}

// DisplayMutantTested prints one line per finished mutant.
func (s *SimpleUI) DisplayMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("[%3d%%] %s (%s) %s -> %s (ETC %s)\n",
		progress.PercentDone,
		result.Mutant.ID,
		result.Mutant.MutatorName,
		locationLabel(result.Mutant),
		result.Status,
		progress.ETC,
	)
}

// DisplaySummary prints the final counters and mutation score.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary, score float64) {
	if err := ctx.Err(); err != nil {
		return
	}

	if summary.Aborted {
		s.printf("Aborted after %s: %s\n", summary.Elapsed, summary.Reason)
	} else {
		s.printf("Done in %s\n", summary.Elapsed)
	}

	s.printf("Tested %d/%d, survived %d, timed out %d\n",
		summary.Progress.Tested,
		summary.Progress.Total,
		summary.Progress.Survived,
		summary.Progress.TimedOut,
	)
	s.printf("Mutation score: %.2f%%\n", score*100)
}

// DisplayReport prints a saved report with the diff of every surviving mutant.
func (s *SimpleUI) DisplayReport(ctx context.Context, report m.SessionReport, diffs map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderStatusTable(report.Results))

	for _, result := range report.Results {
		if result.Status != m.Survived && result.Status != m.NoCoverage {
			continue
		}

		s.printf("%s (%s) %s -> %s\n", result.Mutant.ID, result.Mutant.MutatorName, locationLabel(result.Mutant), result.Status)

		if diff, ok := diffs[result.Mutant.ID]; ok && diff != "" {
			s.printf("%s\n", diff)
		}
	}

	s.DisplaySummary(ctx, report.Summary, report.Score)

	return nil
}

func renderStatusTable(results []m.MutantResult) string {
	counts := make(map[m.MutantStatus]int)
	for _, result := range results {
		counts[result.Status]++
	}

	statuses := make([]m.MutantStatus, 0, len(counts))
	for status := range counts {
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i] < statuses[j]
	})

	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Status", "Mutants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	for _, status := range statuses {
		table.Append([]string{status.String(), fmt.Sprintf("%d", counts[status])})
	}

	table.SetFooter([]string{"Total", fmt.Sprintf("%d", len(results))})
	table.Render()

	return tableBuffer.String()
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}
