package main

import (
	"github.com/spf13/cobra"

	"github.com/dskow/lesson-services/internal/server"
)

var echoCmd = &cobra.Command{
	Use:   "echo",
	Short: "Run the day-1 echo service",
	Long: `Run the echo service: GET /healthz, GET /info, GET /config and POST /echo.

Examples:
  lessond echo
  PORT=9000 APP_NAME=demo FEATURE_FLAG_X=on lessond echo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), server.Echo)
	},
}

func init() {
	rootCmd.AddCommand(echoCmd)
}
