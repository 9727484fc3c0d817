package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:     "render <slug>",
	Aliases: []string{"r"},
	Short:   "Render a page or section to stdout",
	Long: `Render the page with the given slug, expanding every section it
references, and print the complete HTML document.

Examples:
  sections render home               # Render the home page
  sections render welcome --section  # Render a section on its own
  sections render home --body        # Print only the body markup`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var (
	renderSection  bool
	renderBodyOnly bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().BoolVarP(&renderSection, "section", "s", false, "Look the slug up among sections instead of pages")
	renderCmd.Flags().BoolVarP(&renderBodyOnly, "body", "b", false, "Print only the rendered body")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, _, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	repo := container.Pages
	if renderSection {
		repo = container.Sections
	}

	rec, err := repo.FindBySlug(ctx, args[0])
	if err != nil {
		return err
	}

	doc, err := container.Renderer.RenderPage(ctx, rec)
	if err != nil {
		return err
	}

	if renderBodyOnly {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Body)
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), doc.HTML())
	return err
}
