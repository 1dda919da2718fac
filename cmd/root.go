// Package cmd provides the root command and CLI setup for mutorch.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gooze.dev/pkg/mutorch/internal/adapter"
	"gooze.dev/pkg/mutorch/internal/controller"
	"gooze.dev/pkg/mutorch/internal/domain"
)

var fsAdapter adapter.SourceFSAdapter
var sessionStore adapter.SessionStore
var reportStore adapter.ReportStore
var matcher domain.Matcher
var workflow domain.Workflow
var ui controller.UI

// inputFlag is a root-level flag naming the session file.
var inputFlag string

// reportsOutputDirFlag is a root-level flag shared by commands that read/write reports.
var reportsOutputDirFlag string

var verboseFlag bool
var logFileFlag string

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	sessionStore = adapter.NewSessionStore(fsAdapter)
	reportStore = adapter.NewReportStore(fsAdapter)
	matcher = domain.NewMatcher()
	workflow = domain.NewWorkflow(
		sessionStore,
		reportStore,
		fsAdapter,
		ui,
		matcher,
		newCommandRunner,
	)
}

// newCommandRunner builds the test runner of one worker from the run.* settings.
func newCommandRunner(workerID int) adapter.TestRunner {
	return adapter.NewCommandTestRunner(
		workerID,
		viper.GetString(shellConfigKey),
		viper.GetString(commandConfigKey),
		viper.GetString(workDirConfigKey),
	)
}

const sessionHelp = `A session file (YAML or JSON) lists the mutants and the baseline test run:
  mutants:   id, mutatorName, fileName, range, replacement, location
  baseline:  tests (id, name, timeSpentMs, status) and optional coverage
             (static and perTest hit counts per mutant id)`

const rootLongDescription = `mutorch orchestrates mutation testing sessions. It matches every mutant
with the tests that cover it, runs the covering tests on a pool of workers
with per-mutant timeouts, and reports live progress and a mutation score.

` + sessionHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutorch",
		Short: "Mutation testing orchestrator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag || viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}

	configurePersistentFlags(cmd)

	return cmd
}

func configurePersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&inputFlag, inputFlagName, "i",
			viper.GetString(inputFlagName),
			"session file with the mutants and the baseline test run",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(inputFlagName), inputFlagName)

	cmd.PersistentFlags().
		StringVarP(
			&reportsOutputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for mutation testing reports",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file path (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// SIGINT and SIGTERM cancel the running session.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func sessionPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return viper.GetString(inputFlagName)
}
