package artifact

import (
	"fmt"
	"strings"
)

// The error types below form an open taxonomy: match them with
// errors.As and keep a default arm, new causes may be added.

// InputError reports a malformed or unusable request input.
type InputError struct {
	Path   string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input %s: %s", e.Path, e.Reason)
}

// PreflightError reports build tools missing from the environment.
// Not retryable; the user must fix the environment.
type PreflightError struct {
	Missing []string
}

func (e *PreflightError) Error() string {
	return fmt.Sprintf("missing build tool(s): %s", strings.Join(e.Missing, ", "))
}

// DirtyWorktreeError reports uncommitted changes under a clean-required
// policy. The user must commit or switch to a dirty-allowed policy.
type DirtyWorktreeError struct {
	Repo string
}

func (e *DirtyWorktreeError) Error() string {
	return fmt.Sprintf("worktree is dirty, cannot build: %s", e.Repo)
}

// BuildFailedError reports a non-zero exit from the external build.
// The log at LogPath holds the build output; the failure is never
// auto-retried.
type BuildFailedError struct {
	ExitCode int
	LogPath  string
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed with exit code %d, see log at %s", e.ExitCode, e.LogPath)
}

// MissingOutputError reports that a build claimed success but the
// expected binary is absent. Usually a misconfigured expected-output
// path.
type MissingOutputError struct {
	Expected string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("missing build output, expected binary at %s", e.Expected)
}

// FsError reports an I/O failure with enough context to diagnose
// without reproducing: the operation and the path it touched.
type FsError struct {
	Op   string
	Path string
	Err  error
}

func (e *FsError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FsError) Unwrap() error { return e.Err }

// LockError reports a failure to acquire or release a cache lock.
// Distinct from build failures.
type LockError struct {
	Path string
	Err  error
}

func (e *LockError) Error() string {
	return fmt.Sprintf("cache lock %s: %v", e.Path, e.Err)
}

func (e *LockError) Unwrap() error { return e.Err }

// DisabledError reports a resolution path whose collaborator is not
// configured in this deployment.
type DisabledError struct {
	Capability string
}

func (e *DisabledError) Error() string {
	return fmt.Sprintf("%s support is disabled in this configuration", e.Capability)
}

// UnknownServiceError reports a service identifier absent from the
// registry.
type UnknownServiceError struct {
	Service string
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown service: %s", e.Service)
}
