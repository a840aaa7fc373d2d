// Package config loads the process-wide resolver configuration from
// viper: defaults, an optional global config file, and bound CLI flags.
// The loaded Config is passed explicitly into the resolver; there is no
// ambient mutable state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// Policy names accepted in config files and on the command line.
const (
	PolicyClean          = "clean"
	PolicyDirty          = "dirty"
	PolicyDirtyUntracked = "dirty-untracked"
)

// Config holds the resolver settings for one process.
type Config struct {
	// CacheRoot is where the content-addressed cache lives.
	CacheRoot string

	// Jobs is the default parallel job count for builds.
	Jobs int

	// Policy is the default dirty-worktree policy name.
	Policy string

	// AllowBuild enables the local-build resolution path.
	AllowBuild bool

	// Platform overrides the detected host platform triple.
	Platform string

	// Verbose enables debug logging.
	Verbose bool
}

// DefaultCacheRoot returns the per-user cache directory.
func DefaultCacheRoot() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".zartifacts-cache"
	}

	return filepath.Join(base, "zartifacts")
}

// Load reads the configuration out of viper and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		CacheRoot:  viper.GetString("cache_root"),
		Jobs:       viper.GetInt("jobs"),
		Policy:     viper.GetString("policy"),
		AllowBuild: viper.GetBool("allow_build"),
		Platform:   viper.GetString("platform"),
		Verbose:    viper.GetBool("verbose"),
	}

	if cfg.CacheRoot == "" {
		cfg.CacheRoot = DefaultCacheRoot()
	}

	if cfg.Policy == "" {
		cfg.Policy = PolicyClean
	}

	if cfg.Jobs < 1 {
		cfg.Jobs = runtime.NumCPU()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate resolves paths and rejects unknown policy names.
func (c *Config) Validate() error {
	abs, err := filepath.Abs(c.CacheRoot)
	if err != nil {
		return fmt.Errorf("invalid cache root: %v", err)
	}
	c.CacheRoot = abs

	switch c.Policy {
	case PolicyClean, PolicyDirty, PolicyDirtyUntracked:
	default:
		return fmt.Errorf("invalid policy %q (want %s, %s, or %s)",
			c.Policy, PolicyClean, PolicyDirty, PolicyDirtyUntracked)
	}

	return nil
}

// GitPolicy maps the configured policy name to the resolver policy.
func (c *Config) GitPolicy() artifact.Policy {
	switch c.Policy {
	case PolicyDirty:
		return artifact.AllowDirty(false)
	case PolicyDirtyUntracked:
		return artifact.AllowDirty(true)
	default:
		return artifact.RequireClean()
	}
}
