package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ucf/section/internal/config"
	"github.com/ucf/section/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Copy the content directory into a SQLite database",
	Long: `Load the content directory and write every record and attachment into
a SQLite database, replacing rows with the same id.

Examples:
  sections import                  # Write to the configured sqlite_path
  sections import --db site.db     # Write to site.db`,
	RunE: runImport,
}

var importDB string

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVar(&importDB, "db", "", "Database path (default is store.sqlite_path)")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	path := importDB
	if path == "" {
		path = cfg.Store.SQLitePath
	}

	mem, err := store.LoadDir(afero.NewOsFs(), cfg.Store.ContentDir)
	if err != nil {
		return err
	}

	db, err := store.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := db.Import(ctx, mem)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s into %s\n", n, cfg.Store.ContentDir, db.Path())
	return nil
}
