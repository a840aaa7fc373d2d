package registry

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// zcashdRecipe wraps the upstream ./zcutil/build.sh script. The script
// is always run from the repository, never from the cache.
type zcashdRecipe struct{}

func (zcashdRecipe) RequiredTools() []string {
	return []string{
		"git", "bash", "make", "gcc", "g++", "ar", "ranlib",
		"perl", "autoconf", "libtool", "pkg-config",
	}
}

func (zcashdRecipe) Build(repo string, jobs int, logPath string) (string, error) {
	if err := runBuildCommand(repo, logPath, "./zcutil/build.sh", fmt.Sprintf("-j%d", jobs)); err != nil {
		return "", err
	}

	return "src/zcashd", nil
}

func specZcashd() *Spec {
	return &Spec{
		ID:            Zcashd,
		BinaryNames:   []string{"zcashd"},
		DefaultOutput: "src/zcashd",
		Recipe:        zcashdRecipe{},
		Probe:         versionFlagProbe{},
	}
}

// runBuildCommand executes an external build process with stdout and
// stderr redirected into an append-only log file. Non-zero exits are
// surfaced with the exit code and log path; the log contents are never
// parsed.
func runBuildCommand(repo, logPath, name string, args ...string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &artifact.FsError{Op: "create log", Path: logPath, Err: err}
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...)
	cmd.Dir = repo
	cmd.Stdout = logFile
	cmd.Stderr = logFile

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &artifact.BuildFailedError{ExitCode: exitErr.ExitCode(), LogPath: logPath}
		}

		return fmt.Errorf("failed to start build %s in %s: %w", name, repo, err)
	}

	return nil
}
