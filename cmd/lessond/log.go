package main

import (
	"github.com/spf13/cobra"

	"github.com/dskow/lesson-services/internal/server"
)

var logFlags struct {
	admin bool
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Run the day-2 log service",
	Long: `Run the log service. Every request is answered by a catch-all that
reflects it back and is logged as one JSON line on stdout.

With --admin the service also exposes GET /healthz, GET /admin and
POST /admin/break. The admin routes require X-API-KEY to match API_KEY; when
API_KEY is empty they are open to everyone.

Examples:
  lessond log
  API_KEY=secret1 PROCESS_NAME=payments lessond log --admin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		variant := server.Log
		if logFlags.admin {
			variant = server.LogAdmin
		}
		return serve(cmd.Context(), variant)
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().BoolVar(&logFlags.admin, "admin", false, "enable the liveness probe and admin routes")
}
