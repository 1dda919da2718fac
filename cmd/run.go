package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/mutorch/internal/domain"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// ErrScoreBelowThreshold is returned when the mutation score is under --break.
var ErrScoreBelowThreshold = errors.New("mutation score below threshold")

const runLongDescription = `Run mutation testing for the mutants of a session file.

Every covered mutant is tested by running the configured command with the
mutant described by MUTORCH_* environment variables. Exit code 0 means the
mutant survived, 1 means it was killed, anything else is a runtime error.

` + sessionHelp

var runConcurrencyFlag int
var runTimeoutFactorFlag float64
var runTimeoutMsFlag int64
var runOverheadMsFlag int64
var runCommandFlag string
var runShellFlag string
var runBreakFlag float64

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [session-file]",
		Short: "Run mutation testing",
		Long:  runLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := workflow.Run(cmd.Context(), domain.RunArgs{
				Input:       m.Path(sessionPath(args)),
				Output:      m.Path(viper.GetString(outputFlagName)),
				Concurrency: viper.GetInt(concurrencyConfigKey),
				Timeouts: domain.TimeoutConfig{
					OverheadMs:    viper.GetInt64(overheadMsConfigKey),
					TimeoutFactor: viper.GetFloat64(timeoutFactorConfigKey),
					BaseTimeoutMs: viper.GetInt64(timeoutMsConfigKey),
				},
				SpillDir: viper.GetString(spillDirConfigKey),
			})
			if err != nil {
				return err
			}

			return checkThreshold(report.Score, viper.GetFloat64(breakConfigKey))
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&runConcurrencyFlag, concurrencyFlagName, "c", viper.GetInt(concurrencyConfigKey), "number of test workers")
	bindFlagToConfig(cmd.Flags().Lookup(concurrencyFlagName), concurrencyConfigKey)

	cmd.Flags().Float64Var(&runTimeoutFactorFlag, timeoutFactorFlagName, viper.GetFloat64(timeoutFactorConfigKey),
		"multiplier applied to the estimated test time of a mutant")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutFactorFlagName), timeoutFactorConfigKey)

	cmd.Flags().Int64Var(&runTimeoutMsFlag, timeoutMsFlagName, viper.GetInt64(timeoutMsConfigKey),
		"constant added to every mutant timeout, in milliseconds")
	bindFlagToConfig(cmd.Flags().Lookup(timeoutMsFlagName), timeoutMsConfigKey)

	cmd.Flags().Int64Var(&runOverheadMsFlag, overheadMsFlagName, viper.GetInt64(overheadMsConfigKey),
		"fixed test runner overhead, in milliseconds")
	bindFlagToConfig(cmd.Flags().Lookup(overheadMsFlagName), overheadMsConfigKey)

	cmd.Flags().StringVar(&runCommandFlag, commandFlagName, viper.GetString(commandConfigKey), "test command run for every mutant")
	bindFlagToConfig(cmd.Flags().Lookup(commandFlagName), commandConfigKey)

	cmd.Flags().StringVar(&runShellFlag, shellFlagName, viper.GetString(shellConfigKey), "shell used to run the test command")
	bindFlagToConfig(cmd.Flags().Lookup(shellFlagName), shellConfigKey)

	cmd.Flags().Float64Var(&runBreakFlag, breakFlagName, viper.GetFloat64(breakConfigKey),
		"fail when the mutation score (percent) is below this value, 0 disables")
	bindFlagToConfig(cmd.Flags().Lookup(breakFlagName), breakConfigKey)
}

// checkThreshold compares a score in [0, 1] with a threshold in percent.
func checkThreshold(score float64, breakPercent float64) error {
	if breakPercent <= 0 {
		return nil
	}

	if score*100 < breakPercent {
		return fmt.Errorf("%w: %.2f%% < %.2f%%", ErrScoreBelowThreshold, score*100, breakPercent)
	}

	return nil
}
