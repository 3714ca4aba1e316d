package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xuxiong/issue-insight/pkg/github"
)

var ratelimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the current GitHub API quota",
	Long: `Show the remaining GitHub API request quota and when it resets.

Unauthenticated requests share a small per-IP quota. Set GITHUB_TOKEN
(or add it to a .env file) for the much larger authenticated quota.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := github.NewClient()
		if err != nil {
			return err
		}

		info, err := client.GetRateLimitInfo()
		if err != nil {
			return err
		}

		fmt.Printf("Limit:     %s\n", humanize.Comma(int64(info.Limit)))
		fmt.Printf("Remaining: %s\n", humanize.Comma(int64(info.Remaining)))
		fmt.Printf("Resets:    %s (%s)\n", info.Reset.Local().Format(time.RFC1123), humanize.Time(info.Reset))

		if info.Exhausted() {
			color.New(color.FgRed).Println("Quota exhausted. Requests will fail until the reset.")
		} else if info.Low() {
			color.New(color.FgYellow).Println("Quota is running low.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratelimitCmd)
}
