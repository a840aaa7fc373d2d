package registry

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

func TestRunBuildCommand_CapturesOutputInLog(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("build fixture is a shell script")
	}

	repo := t.TempDir()
	script := filepath.Join(repo, "build.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho compiling\n"), 0o755))

	logPath := filepath.Join(t.TempDir(), "build.log")
	require.NoError(t, runBuildCommand(repo, logPath, "./build.sh"))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "compiling")
}

func TestRunBuildCommand_FailureCarriesExitCodeAndLog(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("build fixture is a shell script")
	}

	repo := t.TempDir()
	script := filepath.Join(repo, "build.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho boom\nexit 3\n"), 0o755))

	logPath := filepath.Join(t.TempDir(), "build.log")
	err := runBuildCommand(repo, logPath, "./build.sh")

	var buildErr *artifact.BuildFailedError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, 3, buildErr.ExitCode)
	assert.Equal(t, logPath, buildErr.LogPath)

	data, readErr := os.ReadFile(logPath)
	require.NoError(t, readErr)
	assert.Contains(t, string(data), "boom", "failed attempts stay inspectable through their log")
}
