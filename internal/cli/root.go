package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshare/internal/config"
	"github.com/mrlokans/bookshare/internal/entrypoint"
)

var (
	// Global flags
	dbDriver string
	dbPath   string
	dbDSN    string
)

// rootCmd runs the HTTP server when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "bookshare",
	Short: "Bookshare - book lending backend",
	Long: `Bookshare is the REST backend of a book-lending community: users publish
books they are willing to lend, browse what others published and request loans.

Configuration is read from the environment (and a .env file when present).
Database flags override DATABASE_DRIVER, DATABASE_PATH and DATABASE_DSN.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Execute runs the root command
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "SQLite database file")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db-dsn", "", "PostgreSQL connection string")
}

// loadConfig reads the environment and applies the global flag overrides.
func loadConfig() *config.Config {
	cfg := config.NewConfig()
	applyDatabaseFlags(cfg)
	return cfg
}

func applyDatabaseFlags(cfg *config.Config) {
	if dbDriver != "" {
		cfg.Database.Driver = config.DatabaseDriver(dbDriver)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if dbDSN != "" {
		cfg.Database.DSN = dbDSN
	}
}

func openApp() (*entrypoint.App, error) {
	return entrypoint.Open(loadConfig())
}
