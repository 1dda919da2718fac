package controller

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	m "gooze.dev/pkg/mutorch/internal/model"
)

const (
	recentResultsLimit = 8
	maxBarWidth        = 60
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
	statusStyles = map[m.MutantStatus]lipgloss.Style{
		m.Killed:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		m.Survived:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		m.TimedOut:     lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		m.RuntimeError: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		m.NoCoverage:   lipgloss.NewStyle().Faint(true),
	}
)

// TUI implements UI using Bubble Tea for the live run view. Static
// output (matches, summaries, reports) is printed as plain text.
type TUI struct {
	*SimpleUI

	output io.Writer
	input  io.Reader

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
	stopped bool
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{
		SimpleUI: NewSimpleUI(cmd),
		output:   cmd.OutOrStdout(),
		input:    cmd.InOrStdin(),
	}
}

// Start launches the interactive program in run mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newStartConfig(options)
	if config.mode != ModeRun {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	t.program = tea.NewProgram(newRunModel(), tea.WithOutput(t.output), tea.WithInput(t.input))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}, cancel context.CancelFunc) {
		defer close(done)

		finalModel, err := program.Run()
		if err != nil {
			if cancel != nil {
				cancel()
			}

			return
		}

		if model, ok := finalModel.(runModel); ok && model.quitting && cancel != nil {
			cancel()
		}
	}(t.program, t.done, config.cancel)

	return nil
}

// Close stops the interactive program and waits for it to restore the terminal.
func (t *TUI) Close(_ context.Context) {
	t.stop()
}

// Wait blocks until the interactive program exits.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayConcurrencyInfo shows concurrency settings.
func (t *TUI) DisplayConcurrencyInfo(ctx context.Context, workers int, mutants int) {
	if !t.send(concurrencyMsg{workers: workers, mutants: mutants}) {
		t.SimpleUI.DisplayConcurrencyInfo(ctx, workers, mutants)
	}
}

// DisplayMutantTested forwards a finished mutant to the live view.
func (t *TUI) DisplayMutantTested(ctx context.Context, result m.MutantResult, progress m.Progress) {
	if !t.send(mutantTestedMsg{result: result, progress: progress}) {
		t.SimpleUI.DisplayMutantTested(ctx, result, progress)
	}
}

// DisplaySummary ends the live view and prints the summary below it.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.Summary, score float64) {
	t.stop()
	t.SimpleUI.DisplaySummary(ctx, summary, score)
}

func (t *TUI) send(msg tea.Msg) bool {
	t.mu.Lock()
	program := t.program
	stopped := t.stopped
	t.mu.Unlock()

	if program == nil || stopped {
		return false
	}

	program.Send(msg)

	return true
}

func (t *TUI) stop() {
	t.mu.Lock()
	if t.program == nil || t.stopped {
		t.mu.Unlock()
		return
	}

	t.stopped = true
	program := t.program
	done := t.done
	t.mu.Unlock()

	program.Send(finishedMsg{})
	program.Quit()
	<-done
}

type concurrencyMsg struct {
	workers int
	mutants int
}

type mutantTestedMsg struct {
	result   m.MutantResult
	progress m.Progress
}

type finishedMsg struct{}

// runModel is the Bubble Tea model for a running session.
type runModel struct {
	bar      progress.Model
	workers  int
	mutants  int
	progress m.Progress
	counts   map[m.MutantStatus]int
	recent   []m.MutantResult
	finished bool
	quitting bool
}

func newRunModel() runModel {
	return runModel{
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
		counts: make(map[m.MutantStatus]int),
	}
}

func (rm runModel) Init() tea.Cmd {
	return nil
}

func (rm runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		rm.bar.Width = min(maxBarWidth, max(10, msg.Width-20))

		return rm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			rm.quitting = true
			return rm, tea.Quit
		}

		return rm, nil

	case concurrencyMsg:
		rm.workers = msg.workers
		rm.mutants = msg.mutants

		return rm, nil

	case mutantTestedMsg:
		rm.progress = msg.progress
		rm.counts[msg.result.Status]++

		rm.recent = append(rm.recent, msg.result)
		if len(rm.recent) > recentResultsLimit {
			rm.recent = rm.recent[len(rm.recent)-recentResultsLimit:]
		}

		return rm, nil

	case finishedMsg:
		rm.finished = true

		return rm, nil
	}

	return rm, nil
}

func (rm runModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mutorch - mutation testing"))
	b.WriteString("\n\n")

	if rm.workers > 0 {
		fmt.Fprintf(&b, "  %d mutants, %d worker(s)\n\n", rm.mutants, rm.workers)
	}

	fmt.Fprintf(&b, "  %s %s\n\n",
		rm.bar.ViewAs(float64(rm.progress.PercentDone)/100),
		accentStyle.Render(fmt.Sprintf("%3d%%", rm.progress.PercentDone)),
	)

	fmt.Fprintf(&b, "  Tested %d/%d  Killed %d  Survived %d  Timed out %d  ETC %s\n\n",
		rm.progress.Tested,
		rm.progress.Total,
		rm.counts[m.Killed],
		rm.progress.Survived,
		rm.progress.TimedOut,
		etcLabel(rm.progress.ETC),
	)

	for _, result := range rm.recent {
		style := statusStyles[result.Status]
		fmt.Fprintf(&b, "  %-14s %s %s\n",
			style.Render(result.Status.String()),
			result.Mutant.ID,
			locationLabel(result.Mutant),
		)
	}

	if !rm.finished {
		b.WriteString("\n")
		b.WriteString(footerStyle.Render("  Press q to abort"))
		b.WriteString("\n")
	}

	return b.String()
}

func etcLabel(etc string) string {
	if etc == "" {
		return "n/a"
	}

	return etc
}
