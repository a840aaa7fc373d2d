package cache

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

func TestPublishExecutable(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "built")
	dst := filepath.Join(dir, "out", "zcashd")

	content := fakeELF("built binary")
	require.NoError(t, os.WriteFile(src, content, 0o644))

	require.NoError(t, PublishExecutable(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.NotZero(t, info.Mode().Perm()&0o111, "published copy must carry the exec bit")
	}
}

func TestPublishExecutable_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "built")
	dst := filepath.Join(dir, "out", "zcashd")

	require.NoError(t, os.WriteFile(src, fakeELF("bin"), 0o644))
	require.NoError(t, PublishExecutable(src, dst))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)

	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), ".publish-"),
			"no temporary file may remain visible after publish")
	}
	assert.Len(t, entries, 1)
}

func TestPublishExecutable_ReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "built")
	dst := filepath.Join(dir, "out", "zcashd")

	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, fakeELF("old"), 0o755))
	require.NoError(t, os.WriteFile(src, fakeELF("new"), 0o644))

	require.NoError(t, PublishExecutable(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, fakeELF("new"), got)
}

func TestPublishExecutable_MissingSource(t *testing.T) {
	dir := t.TempDir()

	err := PublishExecutable(filepath.Join(dir, "missing"), filepath.Join(dir, "out", "zcashd"))
	require.Error(t, err)

	var fsErr *artifact.FsError
	require.True(t, errors.As(err, &fsErr))
	assert.Contains(t, fsErr.Path, "missing", "error must name the path that failed")
}

func TestPublishExecutable_FailureLeavesExistingIntact(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out", "zcashd")

	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, fakeELF("old"), 0o755))

	err := PublishExecutable(filepath.Join(dir, "missing"), dst)
	require.Error(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, fakeELF("old"), got, "a failed publish must not disturb the previous artifact")
}
