package cmd

import (
	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the section content type definition",
	Long: `Print the registration arguments of the section content type after
every labels, arguments and taxonomies override has been applied.`,
	RunE: runTypes,
}

var typesOutput *formatValue

func init() {
	rootCmd.AddCommand(typesCmd)

	typesOutput = addOutputFlag(typesCmd, "yaml", "json", "yaml")
}

func runTypes(cmd *cobra.Command, args []string) error {
	container, _, err := loadContainer(cmd.Context())
	if err != nil {
		return err
	}
	defer container.Close()

	if typesOutput.String() == "json" {
		return writeJSON(cmd.OutOrStdout(), container.PostType)
	}
	return writeYAML(cmd.OutOrStdout(), container.PostType)
}
