// Package artifact defines the request and result types shared by the
// resolver and the build orchestrator: artifact sources, the dirty-worktree
// policy, the resolved artifact, and the error taxonomy.
package artifact

// Source describes where a requested artifact should come from.
// It is a closed set; the resolver dispatches on the concrete type.
type Source interface {
	sourceKind() string
}

// LocalPath requests an executable that already exists on disk.
// No cache is involved; the path is validated and returned as-is.
type LocalPath struct {
	Path string
}

// Release requests a published release binary for a service.
// Resolution requires a release fetcher collaborator to be configured.
type Release struct {
	Service string
	Version string
}

// Build requests a binary built from a local repository clone.
type Build struct {
	Service string

	// Repo is the path to the local repository clone.
	Repo string

	// Refspec is any of tag, branch, or commit. Defaults to HEAD.
	Refspec string

	// Policy controls whether uncommitted changes are allowed.
	Policy Policy

	// ExpectedOutput overrides the service's default output path
	// (relative to the repo unless absolute).
	ExpectedOutput string

	// Jobs is the parallel job count for the build. Zero means the
	// resolver default.
	Jobs int
}

// URL requests a binary downloaded from an arbitrary URL.
// Resolution requires an HTTP fetch collaborator to be configured.
type URL struct {
	URL      string
	Checksum string
}

// OCIImage requests a binary extracted from an OCI image.
// Resolution requires an OCI pull collaborator to be configured.
type OCIImage struct {
	Reference string
	Digest    string
}

func (LocalPath) sourceKind() string { return "local-path" }
func (Release) sourceKind() string   { return "release" }
func (Build) sourceKind() string     { return "local-repo" }
func (URL) sourceKind() string       { return "url" }
func (OCIImage) sourceKind() string  { return "oci-image" }

// Resolved is the sole success value of a resolution: a validated
// executable path. Validity is guaranteed at the moment of return; the
// cache directory can be removed out-of-band afterwards.
type Resolved struct {
	Path string
}
