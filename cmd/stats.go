package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ca-srg/readmelater/internal/poster"
	"github.com/ca-srg/readmelater/internal/ratelimit"
	"github.com/ca-srg/readmelater/internal/stats"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show local send statistics and the current rate limit budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := stats.NewStore(cfg.StatsPath)
			if err != nil {
				return fmt.Errorf("failed to open stats store: %w", err)
			}
			defer func() { _ = store.Close() }()

			totals, err := store.GetAllTotals()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Outcomes recorded in %s:\n", cfg.StatsPath)
			for _, outcome := range poster.AllOutcomes {
				fmt.Fprintf(out, "  %-16s %d\n", outcome, totals[outcome])
			}

			limiter := ratelimit.NewFileLimiter(cfg.RateLimitFile, cfg.RateLimitMax, cfg.RateLimitWindow)
			left, err := limiter.Remaining()
			if err != nil {
				fmt.Fprintf(out, "Rate limit: unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(out, "Rate limit: %d of %d sends left in the current %v window\n",
				left, cfg.RateLimitMax, cfg.RateLimitWindow)
			return nil
		},
	}
}
