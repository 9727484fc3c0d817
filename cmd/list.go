package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ucf/section/internal/section"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List stored sections",
	Long: `List the stored sections with their slugs, tags and the attachments
they reference.

Examples:
  sections list            # Table of sections
  sections list --pages    # Table of pages
  sections list -o json    # Output as JSON`,
	RunE: runList,
}

var (
	listOutput *formatValue
	listPages  bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listOutput = addOutputFlag(listCmd, "table", "table", "json", "yaml")
	listCmd.Flags().BoolVar(&listPages, "pages", false, "List pages instead of sections")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	container, _, err := loadContainer(ctx)
	if err != nil {
		return err
	}
	defer container.Close()

	repo := container.Sections
	if listPages {
		repo = container.Pages
	}
	records, err := repo.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch listOutput.String() {
	case "json":
		if records == nil {
			records = []*section.Record{}
		}
		return writeJSON(out, records)
	case "yaml":
		return writeYAML(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No %s found.\n", repo.Kind())
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSLUG\tTITLE\tTAGS\tSTYLESHEET\tJAVASCRIPT")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Slug, r.Title, strings.Join(r.Tags, ","),
			attachmentCell(r.StylesheetID), attachmentCell(r.ScriptID))
	}
	return w.Flush()
}

func attachmentCell(id int64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprint(id)
}
