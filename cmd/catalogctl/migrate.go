package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fekuna/omnipos-catalog-service/internal/database"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Migrate applies every embedded migration that has not run yet.

Example:
  catalogctl migrate
  catalogctl migrate --driver sqlite --sqlite-path catalog.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, log, err := opts.open()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db, log); err != nil {
				return err
			}
			version, err := database.Version(db)
			if err != nil {
				return fmt.Errorf("read schema version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", version)
			return nil
		},
	}
}
