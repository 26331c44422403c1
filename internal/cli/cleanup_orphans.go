package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// cleanupOrphansCmd repairs books left without a publication.
var cleanupOrphansCmd = &cobra.Command{
	Use:   "cleanup-orphans",
	Short: "Delete books that have no publication",
	Long: `Delete books left without a publication by interrupted writes, together with
their genre links. Runs once, synchronously, without the task queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp()
		if err != nil {
			return err
		}
		defer app.Close()

		deleted, err := app.Books.DeleteOrphans(context.Background())
		if err != nil {
			return fmt.Errorf("failed to delete orphan books: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d orphan books\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupOrphansCmd)
}
