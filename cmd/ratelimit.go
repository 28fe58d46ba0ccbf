package cmd

import (
	"fmt"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"

	"github.com/spiffcs/bzmigrate/internal/ghclient"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Check destination API rate limit status",
		Long: `Display the GitHub API rate limit of the configured token. An import
creates and locks one issue per bug, so check the remaining quota before
starting a large range.`,
	}
	cmd.AddCommand(NewCmdRateLimitStatus())
	return cmd
}

// NewCmdRateLimitStatus creates the ratelimit status subcommand.
func NewCmdRateLimitStatus() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show current rate limit status",
		Long:  `Display the current GitHub API rate limit status for core, search and GraphQL APIs.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			dest, err := openDestination(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			client, ok := dest.(*ghclient.Client)
			if !ok {
				return fmt.Errorf("rate limit status is only available for GitHub destinations (host is %q)", cfg.HostName())
			}

			limits, err := client.RateLimits(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("GitHub API Rate Limits for %s:\n\n", client.Name())
			printRate("Core API:  ", limits.Core)
			printRate("Search API:", limits.Search)
			printRate("GraphQL:   ", limits.GraphQL)
			return nil
		},
	}
}

func printRate(label string, rate *gh.Rate) {
	if rate == nil {
		return
	}
	resetIn := time.Until(rate.Reset.Time).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Printf("%s %d/%d remaining (resets in %s)\n", label, rate.Remaining, rate.Limit, resetIn)
}
