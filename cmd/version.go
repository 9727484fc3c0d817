package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ucf/section/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, commit, build time, Go version and platform of
this binary.

Examples:
  sections version             # Version and short commit
  sections version -o json     # Everything, as JSON`,
	RunE: runVersion,
}

var versionOutput *formatValue

func init() {
	rootCmd.AddCommand(versionCmd)

	versionOutput = addOutputFlag(versionCmd, "text", "text", "json", "yaml")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch versionOutput.String() {
	case "json":
		return writeJSON(out, info)
	case "yaml":
		return writeYAML(out, info)
	}

	fmt.Fprintf(out, "sections %s\n", info.Short())
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(out, "  built:    %s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(out, "  go:       %s\n", info.GoVersion)
	fmt.Fprintf(out, "  platform: %s\n", info.Platform)
	return nil
}
