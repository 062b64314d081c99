package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "lessond",
	Short: "Lesson services for container and Kubernetes tutorials",
	Long: `lessond serves the tutorial HTTP services. Configuration comes from the
environment (PORT, APP_NAME, APP_VERSION, FEATURE_FLAG_X, LOG_LEVEL,
PROCESS_NAME, API_KEY), optionally seeded from a dotenv file, plus an optional
YAML settings file for server tuning.`,
	Version:      Version,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "settings file path (optional, hot-reloaded)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file loaded before reading the environment")
}
