package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/mutorch/internal/domain"
	m "gooze.dev/pkg/mutorch/internal/model"
)

// matchCmd represents the match command.
var matchCmd = newMatchCmd()

func newMatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match [session-file]",
		Short: "Show which tests cover each mutant",
		Long: `Match every mutant of a session file with the baseline tests covering it
and print the selected tests and the estimated test time, without running anything.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Match(cmd.Context(), domain.MatchArgs{Input: m.Path(sessionPath(args))})
		},
	}
}

func init() {
	rootCmd.AddCommand(matchCmd)
}
