package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zcash-infra/zartifacts/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the artifact cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cached artifact count and total size",
	RunE:         runCacheStats,
	SilenceUsage: true,
}

var cacheListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List cached artifacts, newest first",
	RunE:         runCacheList,
	SilenceUsage: true,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheListCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ix, err := cache.OpenIndex(cfg.CacheRoot)
	if err != nil {
		return err
	}
	defer ix.Close()

	count, size, err := ix.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "artifacts: %d\ntotal size: %.1f MiB\n", count, float64(size)/(1024*1024))
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ix, err := cache.OpenIndex(cfg.CacheRoot)
	if err != nil {
		return err
	}
	defer ix.Close()

	entries, err := ix.List()
	if err != nil {
		return err
	}

	for _, e := range entries {
		dirty := "clean"
		if e.Dirty {
			dirty = "dirty"
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %.7s  %s  %s\n",
			e.BuiltAt.Format("2006-01-02 15:04"), e.Service, e.Commit, dirty, e.Path)
	}

	return nil
}
