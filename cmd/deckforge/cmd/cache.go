package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deckforge/deckforge/internal/cache"
	"github.com/deckforge/deckforge/internal/ui"
)

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the market-analysis result cache",
	}
	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheSweepCmd())
	return cmd
}

// openCache opens the result cache at its configured location.
func openCache() (*cache.Cache, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.New(filepath.Join(cfg.Paths.StoreRoot, "cache.db"), cfg.Cache.TTL)
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			stats, err := c.CacheStats(cmd.Context())
			if err != nil {
				return err
			}

			out := ui.NewPrinter(cmd.OutOrStdout())
			out.KeyValue("Total", fmt.Sprintf("%d", stats.TotalEntries))
			out.KeyValue("Valid", fmt.Sprintf("%d", stats.ValidEntries))
			out.KeyValue("Expired", fmt.Sprintf("%d", stats.ExpiredEntries))
			return nil
		},
	}
}

func newCacheSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired cache entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			removed, err := c.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}

			ui.NewPrinter(cmd.OutOrStdout()).Successf("removed %d expired entries", removed)
			return nil
		},
	}
}
