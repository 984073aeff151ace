package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "politicos",
	Short: "Parliamentary expense data collector and API",
	Long: `politicos ingests expense data published by the Chamber of Deputies
and the Federal Senate into PostgreSQL and serves aggregate queries over it.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
