package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd creates the schema and seeds the genre catalogue.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update all tables and seed the static genre catalogue, then exit.
Running it again is safe: existing genres are not duplicated.

Examples:
  bookshare migrate
  bookshare migrate --db-driver postgres --db-dsn "postgres://localhost/bookshare"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "Database migrated (%s)\n", app.Config.Database.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
