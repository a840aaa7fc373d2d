// Package cmd implements the zartifacts command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zcash-infra/zartifacts/internal/config"
	"github.com/zcash-infra/zartifacts/internal/version"
)

var rootCmd = &cobra.Command{
	Use:          "zartifacts",
	Short:        "Resolve Zcash service executables through a content-addressed build cache",
	Long: `zartifacts resolves a requested service executable (zcashd, zebrad)
into a concrete, verified, runnable file path. Local builds are cached
by content identity (commit, worktree state, platform), so repeated
requests for the same bits never rebuild.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)

	rootCmd.PersistentFlags().String("cache-root", "", "Cache directory (default: per-user cache dir)")
	rootCmd.PersistentFlags().IntP("jobs", "j", 0, "Parallel build jobs (default: CPU count)")
	rootCmd.PersistentFlags().String("policy", "", "Dirty-worktree policy: clean, dirty, dirty-untracked")
	rootCmd.PersistentFlags().String("platform", "", "Override the detected platform triple")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(cacheCmd)

	viper.SetDefault("policy", config.PolicyClean)
	viper.SetDefault("allow_build", true)
}

// loadConfig merges the global config file and bound flags, then loads
// and validates the configuration. Also configures logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if dir, err := os.UserConfigDir(); err == nil {
		globalDir := filepath.Join(dir, "zartifacts")

		for _, ext := range []string{"yml", "yaml", "json", "toml"} {
			globalPath := filepath.Join(globalDir, "config."+ext)

			if _, err := os.Stat(globalPath); err == nil {
				viper.SetConfigFile(globalPath)

				if err := viper.ReadInConfig(); err == nil {
					break
				}
			}
		}
	}

	viper.BindPFlag("cache_root", cmd.Flags().Lookup("cache-root"))
	viper.BindPFlag("jobs", cmd.Flags().Lookup("jobs"))
	viper.BindPFlag("policy", cmd.Flags().Lookup("policy"))
	viper.BindPFlag("platform", cmd.Flags().Lookup("platform"))
	viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg, nil
}
