package cache

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeELF(extra string) []byte {
	return append([]byte{0x7f, 'E', 'L', 'F'}, []byte(extra)...)
}

func TestLooksExecutable_Missing(t *testing.T) {
	ok, err := LooksExecutable(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err, "missing file is a valid no, not an error")
	assert.False(t, ok)
}

func TestLooksExecutable_Directory(t *testing.T) {
	ok, err := LooksExecutable(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLooksExecutable_ValidBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zcashd")
	require.NoError(t, os.WriteFile(path, fakeELF("binary"), 0o755))

	ok, err := LooksExecutable(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLooksExecutable_HealsLostExecBit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no exec bits on windows")
	}

	path := filepath.Join(t.TempDir(), "zcashd")
	require.NoError(t, os.WriteFile(path, fakeELF("binary"), 0o644))

	ok, err := LooksExecutable(path)
	require.NoError(t, err)
	assert.True(t, ok, "owned file with lost exec bit should be healed, not rejected")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o111, "exec bit should have been restored")
}

func TestLooksExecutable_RejectsUnknownHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placeholder")
	require.NoError(t, os.WriteFile(path, []byte("not a binary"), 0o755))

	ok, err := LooksExecutable(path)
	require.NoError(t, err)
	assert.False(t, ok, "placeholder content must not pass the header sniff")
}

func TestLooksExecutable_RejectsTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "truncated")
	require.NoError(t, os.WriteFile(path, []byte{0x7f}, 0o755))

	ok, err := LooksExecutable(path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLooksExecutable_ShebangScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	ok, err := LooksExecutable(path)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLooksExecutable_SymlinkToBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	dir := t.TempDir()
	target := filepath.Join(dir, "zcashd")
	require.NoError(t, os.WriteFile(target, fakeELF("binary"), 0o755))

	link := filepath.Join(dir, "link")
	require.NoError(t, os.Symlink(target, link))

	ok, err := LooksExecutable(link)
	require.NoError(t, err)
	assert.True(t, ok, "symlinks to regular files are acceptable")
}
