// Package platform detects the host platform triple used in cache keys
// and provenance records.
package platform

import (
	"fmt"
	"runtime"
)

// Triple returns the host platform triple, e.g. "linux-x86_64",
// "linux-aarch64", "macos-arm64". A non-empty override wins, which lets
// tests and cross-platform tooling pin the value.
func Triple(override string) string {
	if override != "" {
		return override
	}

	return fmt.Sprintf("%s-%s", osName(runtime.GOOS), archName(runtime.GOOS, runtime.GOARCH))
}

func osName(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}

func archName(goos, goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		// Upstream release naming: Apple silicon is "arm64", Linux is "aarch64".
		if goos == "darwin" {
			return "arm64"
		}
		return "aarch64"
	default:
		return goarch
	}
}
