package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	m "gooze.dev/pkg/mutorch/internal/model"
)

// Environment variables handed to the test command.
const (
	EnvActiveMutant = "MUTORCH_ACTIVE_MUTANT"
	EnvMutantFile   = "MUTORCH_MUTANT_FILE"
	EnvReplacement  = "MUTORCH_MUTANT_REPLACEMENT"
	EnvMutantStart  = "MUTORCH_MUTANT_START"
	EnvMutantEnd    = "MUTORCH_MUTANT_END"
	EnvTestFilter   = "MUTORCH_TEST_FILTER"
	EnvWorkerID     = "MUTORCH_WORKER_ID"
)

// testsRanPrefix marks output lines naming an executed test.
const testsRanPrefix = "ran: "

const (
	killedExitCode  = 1
	failureTailSize = 20
	waitDelay       = time.Second
)

// TestRunner is a reusable execution context that tests one mutant at a time.
type TestRunner interface {
	// RunMutant runs the tests selected by options against the active mutant.
	// A returned error means the run could not be carried out at all.
	RunMutant(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error)
}

// Disposer is implemented by test runners holding resources that must be
// released when the session ends.
type Disposer interface {
	Dispose(ctx context.Context) error
}

// CommandTestRunner runs a shell command for every mutant. The command learns
// about the mutant through MUTORCH_* environment variables and reports the
// outcome through its exit code: 0 survived, 1 killed, anything else is an error.
type CommandTestRunner struct {
	id      int
	shell   string
	command string
	workDir string
}

// NewCommandTestRunner constructs a CommandTestRunner.
func NewCommandTestRunner(id int, shell, command, workDir string) *CommandTestRunner {
	return &CommandTestRunner{
		id:      id,
		shell:   shell,
		command: command,
		workDir: workDir,
	}
}

// ID returns the worker number this runner was created with.
func (r *CommandTestRunner) ID() int {
	return r.id
}

// RunMutant runs the configured command with the mutant activated.
func (r *CommandTestRunner) RunMutant(ctx context.Context, options m.MutantRunOptions) (m.MutantRunResult, error) {
	if options.ActiveMutant == nil {
		return m.MutantRunResult{}, errors.New("no active mutant")
	}

	runCtx := ctx

	if options.Timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.shell, "-c", r.command) //nolint:gosec // command comes from user configuration
	cmd.Dir = r.workDir
	cmd.Env = append(os.Environ(), r.environ(options)...)
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()

	testsRan := parseTestsRan(output.String())
	if testsRan == nil {
		testsRan = options.TestFilter
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return m.MutantRunResult{Status: m.RunTimeout, TestsRan: testsRan}, nil
	}

	if err := ctx.Err(); err != nil {
		return m.MutantRunResult{}, err
	}

	if runErr == nil {
		return m.MutantRunResult{Status: m.RunSurvived, TestsRan: testsRan}, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if exitErr.ExitCode() == killedExitCode {
			return m.MutantRunResult{
				Status:         m.RunKilled,
				TestsRan:       testsRan,
				FailureMessage: tail(output.String(), failureTailSize),
			}, nil
		}

		return m.MutantRunResult{
			Status:       m.RunError,
			TestsRan:     testsRan,
			ErrorMessage: fmt.Sprintf("exit code %d: %s", exitErr.ExitCode(), tail(output.String(), failureTailSize)),
		}, nil
	}

	return m.MutantRunResult{}, fmt.Errorf("start test command: %w", runErr)
}

func (r *CommandTestRunner) environ(options m.MutantRunOptions) []string {
	mutant := options.ActiveMutant

	return []string{
		EnvActiveMutant + "=" + mutant.ID,
		EnvMutantFile + "=" + string(mutant.FileName),
		EnvReplacement + "=" + mutant.Replacement,
		EnvMutantStart + "=" + strconv.Itoa(mutant.Range[0]),
		EnvMutantEnd + "=" + strconv.Itoa(mutant.Range[1]),
		EnvTestFilter + "=" + strings.Join(options.TestFilter, ","),
		EnvWorkerID + "=" + strconv.Itoa(r.id),
	}
}

func parseTestsRan(output string) []string {
	var tests []string

	for _, line := range strings.Split(output, "\n") {
		if id, ok := strings.CutPrefix(strings.TrimSpace(line), testsRanPrefix); ok && id != "" {
			tests = append(tests, id)
		}
	}

	return tests
}

func tail(output string, lines int) string {
	trimmed := strings.TrimRight(output, "\n")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "\n")
	if len(parts) > lines {
		parts = parts[len(parts)-lines:]
	}

	return strings.Join(parts, "\n")
}
