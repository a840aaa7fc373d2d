package config

import (
	"runtime"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.CacheRoot)
	assert.Equal(t, PolicyClean, cfg.Policy)
	assert.Equal(t, runtime.NumCPU(), cfg.Jobs)
}

func TestLoad_FromViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("cache_root", t.TempDir())
	viper.Set("jobs", 3)
	viper.Set("policy", PolicyDirty)
	viper.Set("allow_build", true)
	viper.Set("platform", "macos-arm64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Jobs)
	assert.Equal(t, PolicyDirty, cfg.Policy)
	assert.True(t, cfg.AllowBuild)
	assert.Equal(t, "macos-arm64", cfg.Platform)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.Set("policy", "yolo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid policy")
}

func TestGitPolicy(t *testing.T) {
	tests := []struct {
		policy        string
		allowDirty    bool
		hashUntracked bool
	}{
		{PolicyClean, false, false},
		{PolicyDirty, true, false},
		{PolicyDirtyUntracked, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := &Config{Policy: tt.policy}
			p := cfg.GitPolicy()
			assert.Equal(t, tt.allowDirty, p.AllowDirty)
			assert.Equal(t, tt.hashUntracked, p.HashUntracked)
		})
	}
}
