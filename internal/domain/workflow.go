package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"gooze.dev/pkg/mutorch/internal/adapter"
	"gooze.dev/pkg/mutorch/internal/controller"
	m "gooze.dev/pkg/mutorch/internal/model"
	"gooze.dev/pkg/mutorch/pkg/spill"
)

// RunArgs contains the arguments for running a mutation test session.
type RunArgs struct {
	Input       m.Path
	Output      m.Path
	Concurrency int
	Timeouts    TimeoutConfig
	SpillDir    string
}

// MatchArgs contains the arguments for showing coverage matches.
type MatchArgs struct {
	Input m.Path
}

// ViewArgs contains the arguments for showing a saved report.
type ViewArgs struct {
	Output     m.Path
	SourceRoot m.Path
}

// RunnerFactory creates the test runner of one worker.
type RunnerFactory func(workerID int) adapter.TestRunner

// Workflow defines the interface for the mutation testing workflow.
type Workflow interface {
	Run(ctx context.Context, args RunArgs) (m.SessionReport, error)
	Match(ctx context.Context, args MatchArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SessionStore
	adapter.ReportStore
	adapter.SourceFSAdapter
	controller.UI

	matcher   Matcher
	newRunner RunnerFactory
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	sessionStore adapter.SessionStore,
	reportStore adapter.ReportStore,
	fsAdapter adapter.SourceFSAdapter,
	ui controller.UI,
	matcher Matcher,
	newRunner RunnerFactory,
) Workflow {
	return &workflow{
		SessionStore:    sessionStore,
		ReportStore:     reportStore,
		SourceFSAdapter: fsAdapter,
		UI:              ui,
		matcher:         matcher,
		newRunner:       newRunner,
	}
}

func (w *workflow) Run(ctx context.Context, args RunArgs) (report m.SessionReport, err error) {
	session, err := w.Load(ctx, args.Input)
	if err != nil {
		return report, fmt.Errorf("load session: %w", err)
	}

	matched, err := w.matcher.Match(ctx, session.Baseline, session.Mutants)
	if err != nil {
		return report, fmt.Errorf("match mutants: %w", err)
	}

	pool, err := w.newPool(args.Concurrency)
	if err != nil {
		return report, fmt.Errorf("create worker pool: %w", err)
	}

	defer func() {
		if closeErr := pool.Close(context.WithoutCancel(ctx)); closeErr != nil {
			slog.Error("Failed to close worker pool", "error", closeErr)
			err = errors.Join(err, fmt.Errorf("close worker pool: %w", closeErr))
		}
	}()

	results, err := spill.New[m.MutantResult](args.SpillDir)
	if err != nil {
		return report, fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if removeErr := results.Remove(); removeErr != nil {
			slog.Warn("Failed to remove result spill", "path", results.Path(), "error", removeErr)
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := w.Start(runCtx, controller.WithRunMode(), controller.WithCancel(cancel)); err != nil {
		return report, fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	w.DisplayConcurrencyInfo(ctx, pool.Size(), len(matched))

	timer := NewTimer()
	reporter := &sessionReporter{results: results, ui: w.UI}
	executor := NewExecutor(pool, NewProgressTracker(timer), timer, reporter, args.Timeouts)

	_, summary, execErr := executor.Execute(runCtx, matched)

	report, err = w.buildReport(results, summary)
	if err != nil {
		return report, err
	}

	// The report and summary outlive an interrupted run.
	finishCtx := context.WithoutCancel(ctx)

	if err := w.SaveReport(finishCtx, args.Output, report); err != nil {
		return report, fmt.Errorf("save report: %w", err)
	}

	w.DisplaySummary(finishCtx, summary, report.Score)

	if execErr != nil {
		return report, fmt.Errorf("execute mutants: %w", execErr)
	}

	if reporter.err != nil {
		return report, fmt.Errorf("record results: %w", reporter.err)
	}

	return report, nil
}

func (w *workflow) newPool(concurrency int) (*WorkerPool, error) {
	concurrency = max(1, concurrency)

	runners := make([]adapter.TestRunner, 0, concurrency)
	for i := 0; i < concurrency; i++ {
		runners = append(runners, w.newRunner(i))
	}

	return NewWorkerPool(runners)
}

func (w *workflow) buildReport(results spill.Spill[m.MutantResult], summary m.Summary) (m.SessionReport, error) {
	score, err := mutationScoreFromResults(results)
	if err != nil {
		return m.SessionReport{}, fmt.Errorf("compute mutation score: %w", err)
	}

	collected, err := results.Collect()
	if err != nil {
		return m.SessionReport{}, fmt.Errorf("collect results: %w", err)
	}

	return m.SessionReport{
		Results: collected,
		Score:   score,
		Summary: summary,
	}, nil
}

func (w *workflow) Match(ctx context.Context, args MatchArgs) error {
	session, err := w.Load(ctx, args.Input)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	matched, err := w.matcher.Match(ctx, session.Baseline, session.Mutants)
	if err != nil {
		return fmt.Errorf("match mutants: %w", err)
	}

	if err := w.Start(ctx, controller.WithMatchMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	if err := w.DisplayMatches(ctx, matched); err != nil {
		return fmt.Errorf("display matches: %w", err)
	}

	return nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(ctx, args.Output)
	if err != nil {
		return fmt.Errorf("load report: %w", err)
	}

	diffs := w.diffs(ctx, report, args.SourceRoot)

	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		return fmt.Errorf("start ui: %w", err)
	}
	defer w.Close(ctx)

	if err := w.DisplayReport(ctx, report, diffs); err != nil {
		return fmt.Errorf("display report: %w", err)
	}

	return nil
}

// diffs renders the undetected mutants. Mutants whose source cannot be read
// are shown without a diff.
func (w *workflow) diffs(ctx context.Context, report m.SessionReport, sourceRoot m.Path) map[string]string {
	diffs := make(map[string]string)
	sources := make(map[m.Path][]byte)

	for _, result := range report.Results {
		if result.Mutant == nil || (result.Status != m.Survived && result.Status != m.NoCoverage) {
			continue
		}

		path := result.Mutant.FileName
		if !filepath.IsAbs(string(path)) && sourceRoot != "" {
			path = w.JoinPath(string(sourceRoot), string(path))
		}

		source, ok := sources[path]
		if !ok {
			content, err := w.ReadFile(ctx, path)
			if err != nil {
				slog.Warn("Failed to read mutant source", "path", path, "error", err)
			}

			source = content
			sources[path] = content
		}

		if source == nil {
			continue
		}

		diff, err := MutantDiff(source, result.Mutant)
		if err != nil {
			slog.Warn("Failed to diff mutant", "mutant", result.Mutant.ID, "error", err)
			continue
		}

		diffs[result.Mutant.ID] = diff
	}

	return diffs
}

// sessionReporter persists results as they arrive and forwards them to the UI.
type sessionReporter struct {
	results spill.Spill[m.MutantResult]
	ui      controller.UI
	err     error
}

func (r *sessionReporter) OnMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress) {
	if err := r.results.Append(result); err != nil && r.err == nil {
		slog.Error("Failed to record mutant result", "mutant", result.Mutant.ID, "error", err)
		r.err = err
	}

	r.ui.DisplayMutantTested(ctx, result, progress)
}

func (r *sessionReporter) OnAllMutantsTested(_ context.Context, summary m.Summary) {
	slog.Debug("All mutants tested", "tested", summary.Progress.Tested, "aborted", summary.Aborted)
}
