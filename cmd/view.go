package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/mutorch/internal/domain"
	m "gooze.dev/pkg/mutorch/internal/model"
)

var viewSourceRootFlag string

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "View a previously generated mutation report",
		Long: `View the report saved by the last run in the reports directory, with a diff
of every mutant that was not detected.`,
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{
				Output:     m.Path(viper.GetString(outputFlagName)),
				SourceRoot: m.Path(viper.GetString(sourceRootConfigKey)),
			})
		},
	}

	cmd.Flags().StringVar(&viewSourceRootFlag, sourceRootFlagName, viper.GetString(sourceRootConfigKey),
		"directory mutant file names are relative to")
	bindFlagToConfig(cmd.Flags().Lookup(sourceRootFlagName), sourceRootConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
