package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "issue-insight",
	Short: "Analyze GitHub repository issue activity",
	Long: `issue-insight analyzes a public GitHub repository's issue tracker.

It retrieves issues, applies multi-criterion filters (comment counts,
state, labels, assignees, date ranges), computes activity metrics
(volume, label trends, temporal distribution, contributor activity) and
renders the result as a table, JSON or CSV.`,
	Version: Version,
}

// Global flags
var (
	outputFormat string
	quiet        bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format (table, json, csv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress display")
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	// Load .env if present so GITHUB_TOKEN can be picked up
	_ = godotenv.Load()

	rootCmd.Version = Version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
