package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xuxiong/issue-insight/pkg/analyzer"
	"github.com/xuxiong/issue-insight/pkg/args"
	"github.com/xuxiong/issue-insight/pkg/config"
	"github.com/xuxiong/issue-insight/pkg/github"
	"github.com/xuxiong/issue-insight/pkg/issue"
	"github.com/xuxiong/issue-insight/pkg/metrics"
	"github.com/xuxiong/issue-insight/pkg/output"
	"github.com/xuxiong/issue-insight/pkg/progress"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <repository-url>",
	Short: "Analyze a repository's issue activity",
	Long: `Analyze a public GitHub repository's issues with filtering and
activity metrics.

The repository can be given as a full URL or owner/repo shorthand.
Issues are fetched via the GitHub API (pull requests excluded), run
through the configured filters and summarized into activity metrics.`,
	Example: `  # Issues with at least 5 comments
  issue-insight analyze https://github.com/golang/go --min-comments 5

  # Open bugs assigned to either of two users, as JSON
  issue-insight analyze golang/go -s open -l bug -a alice -a bob -o json

  # Detailed metrics over issues created in the last month
  issue-insight analyze golang/go --created-since @today-1m --metrics

  # Everything labelled both "bug" and "regression"
  issue-insight analyze golang/go -l bug -l regression --all-labels`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	args.AddFilterFlags(analyzeCmd)

	analyzeCmd.Flags().Bool("metrics", false, "Display detailed activity metrics and trends")
	analyzeCmd.Flags().String("granularity", "", "Time granularity for activity metrics (auto, daily, weekly, monthly)")
	analyzeCmd.Flags().String("file", "", "Write output to a file instead of stdout")
	analyzeCmd.Flags().Bool("save", false, "Write output to an auto-generated file name")
	analyzeCmd.Flags().BoolP("verbose", "v", false, "Print the active filter summary")
	analyzeCmd.Flags().String("token", "", "GitHub API token (defaults to GITHUB_TOKEN / gh auth)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, cmdArgs []string) error {
	repositoryURL := cmdArgs[0]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	criteria, err := args.ParseFilterFlags(cmd)
	if err != nil {
		return err
	}
	if criteria.Limit == nil && !cmd.Flags().Changed("limit") && cfg.Defaults.Limit > 0 {
		limit := cfg.Defaults.Limit
		criteria.Limit = &limit
	}
	if criteria.State == "" && cfg.Defaults.State != "" {
		criteria.State = issue.IssueState(cfg.Defaults.State)
	}

	format, err := resolveFormat(cmd, cfg)
	if err != nil {
		return err
	}

	granularity, err := resolveGranularity(cmd, cfg)
	if err != nil {
		return err
	}

	showMetrics, _ := cmd.Flags().GetBool("metrics")
	verboseRun, _ := cmd.Flags().GetBool("verbose")

	client, err := newGitHubClient(cmd)
	if err != nil {
		return err
	}

	var reporter analyzer.Reporter
	if !quiet {
		reporter = progress.NewSpinnerReporter(os.Stderr)
	}

	run := analyzer.New(client, metricsOptions(cfg), reporter)

	if verboseRun {
		color.New(color.Faint).Fprintln(os.Stderr, criteria.Summary())
	}

	result, err := run.Analyze(repositoryURL, criteria)
	if err != nil {
		return err
	}

	if verboseRun {
		color.New(color.Faint).Fprintf(os.Stderr, "Analysis completed in %s\n",
			result.Elapsed.Round(10*time.Millisecond))
	}

	writer, cleanup, err := resolveWriter(cmd, result, format)
	if err != nil {
		return err
	}
	defer cleanup()

	formatter := output.NewFormatterWithWriter(format, writer).
		WithGranularity(granularity).
		WithMetrics(showMetrics)

	return formatter.FormatResult(result)
}

// resolveFormat applies the --output flag, then the config default.
// Quiet table output degrades to one URL per line for piping.
func resolveFormat(cmd *cobra.Command, cfg *config.Config) (output.FormatType, error) {
	name := outputFormat
	if !cmd.Flags().Changed("output") && cfg.Defaults.Format != "" {
		name = cfg.Defaults.Format
	}

	format, err := output.ParseFormat(name)
	if err != nil {
		return format, err
	}
	if quiet && format == output.FormatTable {
		format = output.FormatQuiet
	}
	return format, nil
}

func resolveGranularity(cmd *cobra.Command, cfg *config.Config) (metrics.Granularity, error) {
	name, _ := cmd.Flags().GetString("granularity")
	if name == "" {
		name = cfg.Defaults.Granularity
	}
	if name == "" {
		name = string(metrics.GranularityAuto)
	}

	granularity := metrics.Granularity(name)
	if !granularity.IsValid() {
		return "", fmt.Errorf("invalid granularity %q: valid values are auto, daily, weekly, monthly", name)
	}
	return granularity, nil
}

// resolveWriter returns the destination writer for the formatted output
// and a cleanup function. With --file the output goes to the given
// path; with --save a unique file name is generated from the
// repository and format.
func resolveWriter(cmd *cobra.Command, result *analyzer.Result, format output.FormatType) (*os.File, func(), error) {
	path, _ := cmd.Flags().GetString("file")
	save, _ := cmd.Flags().GetBool("save")

	if path == "" && save {
		path = output.GenerateFilename(result.Repository, format)
	}

	if path == "" {
		return os.Stdout, func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}

	cleanup := func() {
		file.Close()
		if !quiet {
			color.New(color.FgGreen).Fprintf(os.Stderr, "Results written to %s\n", path)
		}
	}
	return file, cleanup, nil
}

// newGitHubClient prefers an explicit --token over the ambient gh
// authentication (GH_TOKEN / GITHUB_TOKEN / gh auth login).
func newGitHubClient(cmd *cobra.Command) (*github.Client, error) {
	token, _ := cmd.Flags().GetString("token")
	if token != "" {
		return github.NewClientWithToken(token)
	}
	return github.NewClient()
}

func metricsOptions(cfg *config.Config) metrics.Options {
	return metrics.Options{
		TopLabelLimit:           cfg.Metrics.TopLabelLimit,
		ActiveUserLimit:         cfg.Metrics.ActiveUserLimit,
		TrendingGrowthThreshold: cfg.Metrics.TrendingGrowthThreshold,
		TrendingMinOccurrences:  cfg.Metrics.TrendingMinOccurrences,
	}
}
