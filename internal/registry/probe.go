package registry

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// versionFlagProbe asks a binary for its version with `--version` and
// keeps the first line of output. Any failure means "no version
// recorded"; the probe never fails a resolution.
type versionFlagProbe struct{}

func (versionFlagProbe) Probe(exe string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, exe, "--version").Output()
	if err != nil {
		return "", false
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}

	return line, true
}
