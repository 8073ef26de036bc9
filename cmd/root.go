package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the fitstack CLI.
var rootCmd = &cobra.Command{
	Use:   "fitstack",
	Short: "Fitness-tracking backend server",
	Long:  `fitstack runs the fitness-tracking REST API server and its database migrations.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
