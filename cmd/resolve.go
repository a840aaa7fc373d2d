package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zcash-infra/zartifacts/internal/artifact"
	"github.com/zcash-infra/zartifacts/internal/cache"
	"github.com/zcash-infra/zartifacts/internal/config"
	"github.com/zcash-infra/zartifacts/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve an artifact source into a runnable executable path",
}

var resolvePathCmd = &cobra.Command{
	Use:          "path <executable>",
	Short:        "Validate and return an existing executable",
	Args:         cobra.ExactArgs(1),
	RunE:         runResolvePath,
	SilenceUsage: true,
}

var resolveBuildCmd = &cobra.Command{
	Use:          "build",
	Short:        "Build a service from a local repository, reusing cached results",
	RunE:         runResolveBuild,
	SilenceUsage: true,
}

var resolveReleaseCmd = &cobra.Command{
	Use:          "release",
	Short:        "Resolve a published release binary",
	RunE:         runResolveRelease,
	SilenceUsage: true,
}

func init() {
	resolveBuildCmd.Flags().String("repo", "", "Path to the local repository clone (required)")
	resolveBuildCmd.Flags().String("service", "zcashd", "Service to build (zcashd, zebrad)")
	resolveBuildCmd.Flags().String("refspec", "", "Tag, branch, or commit to build (default HEAD)")
	resolveBuildCmd.Flags().String("expected-output", "", "Override the expected build output path")
	resolveBuildCmd.MarkFlagRequired("repo")

	resolveReleaseCmd.Flags().String("service", "zcashd", "Service to resolve")
	resolveReleaseCmd.Flags().String("version", "", "Release version (required)")
	resolveReleaseCmd.MarkFlagRequired("version")

	resolveCmd.AddCommand(resolvePathCmd)
	resolveCmd.AddCommand(resolveBuildCmd)
	resolveCmd.AddCommand(resolveReleaseCmd)
}

func runResolvePath(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r := newResolver(cfg, nil)

	resolved, err := r.Resolve(artifact.LocalPath{Path: args[0]})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resolved.Path)
	return nil
}

func runResolveBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	repo, _ := cmd.Flags().GetString("repo")
	service, _ := cmd.Flags().GetString("service")
	refspec, _ := cmd.Flags().GetString("refspec")
	expectedOutput, _ := cmd.Flags().GetString("expected-output")

	ix := openIndex(cfg)
	if ix != nil {
		defer ix.Close()
	}

	r := newResolver(cfg, ix)

	resolved, err := r.Resolve(artifact.Build{
		Service:        service,
		Repo:           repo,
		Refspec:        refspec,
		Policy:         cfg.GitPolicy(),
		ExpectedOutput: expectedOutput,
		Jobs:           cfg.Jobs,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resolved.Path)
	return nil
}

func runResolveRelease(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	service, _ := cmd.Flags().GetString("service")
	ver, _ := cmd.Flags().GetString("version")

	r := newResolver(cfg, nil)

	// No release fetcher ships builtin; this fails with a typed
	// disabled-capability error unless one is injected.
	resolved, err := r.Resolve(artifact.Release{Service: service, Version: ver})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), resolved.Path)
	return nil
}

func newResolver(cfg *config.Config, ix *cache.Index) *resolver.Resolver {
	opts := []resolver.Option{}
	if ix != nil {
		opts = append(opts, resolver.WithIndex(ix))
	}

	return resolver.New(resolver.Config{
		CacheRoot:        cfg.CacheRoot,
		PlatformOverride: cfg.Platform,
		AllowBuild:       cfg.AllowBuild,
		DefaultJobs:      cfg.Jobs,
	}, opts...)
}

// openIndex opens the advisory cache index. Failure is logged, not
// fatal; the filesystem stays authoritative.
func openIndex(cfg *config.Config) *cache.Index {
	if err := os.MkdirAll(cfg.CacheRoot, 0o755); err != nil {
		slog.Warn("failed to create cache root", "path", cfg.CacheRoot, "error", err)
		return nil
	}

	ix, err := cache.OpenIndex(cfg.CacheRoot)
	if err != nil {
		slog.Warn("failed to open cache index", "error", err)
		return nil
	}

	return ix
}
