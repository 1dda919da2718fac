// Package controller provides the user interfaces reporting mutation test
// sessions: plain text for pipes and CI logs, Bubble Tea for terminals.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeMatch StartMode = iota
	ModeRun
	ModeView
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode   StartMode
	cancel context.CancelFunc
}

// WithMatchMode shows coverage matching results.
func WithMatchMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeMatch
	}
}

// WithRunMode shows live progress of a mutation test run.
func WithRunMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeRun
	}
}

// WithViewMode shows a saved report.
func WithViewMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeView
	}
}

// WithCancel registers the function called when the user quits the UI early.
func WithCancel(cancel context.CancelFunc) StartOption {
	return func(c *StartConfig) {
		c.cancel = cancel
	}
}

func newStartConfig(options []StartOption) StartConfig {
	config := StartConfig{mode: ModeRun}
	for _, option := range options {
		option(&config)
	}

	return config
}

// UI defines how sessions are presented to the user.
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayMatches(ctx context.Context, matched []m.MutantTestCoverage) error
	DisplayConcurrencyInfo(ctx context.Context, workers int, mutants int)
	DisplayMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress)
	DisplaySummary(ctx context.Context, summary m.Summary, score float64)
	DisplayReport(ctx context.Context, report m.SessionReport, diffs map[string]string) error
}

// NewUI returns the interactive UI on terminals and the plain one otherwise.
func NewUI(cmd *cobra.Command, useTTY bool) UI {
	if useTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
