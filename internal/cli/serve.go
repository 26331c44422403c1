package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshare/internal/entrypoint"
)

var servePort int32

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP API, the background task workers and the maintenance scheduler.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int32VarP(&servePort, "port", "p", 0, "Port to listen on (overrides PORT)")
}

func runServe(cmd *cobra.Command) error {
	cfg := loadConfig()
	if servePort > 0 {
		cfg.HTTP.Port = servePort
	}
	entrypoint.Run(cfg, cmd.Root().Version)
	return nil
}
