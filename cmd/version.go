package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const unknownVersion = "unknown"

// buildVersion returns the module version and VCS revision embedded by the Go toolchain.
func buildVersion(info *debug.BuildInfo) (version string, revision string) {
	version, revision = unknownVersion, unknownVersion

	if info == nil {
		return version, revision
	}

	if info.Main.Version != "" {
		version = info.Main.Version
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			revision = setting.Value
		}
	}

	return version, revision
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version of mutorch and the Go version used to build it.",
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok {
				cmd.Println("version: " + unknownVersion)
				return
			}

			version, revision := buildVersion(info)

			cmd.Println("mutorch version\t", version)
			cmd.Println("revision\t", revision)
			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
