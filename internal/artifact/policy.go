package artifact

// Policy controls how a dirty worktree is handled during a local build.
// The zero value refuses to build from a worktree with uncommitted
// changes.
type Policy struct {
	// AllowDirty permits building from a dirty worktree. The cache key
	// then includes a content hash of the worktree so local edits stay
	// isolated from clean builds of the same commit.
	AllowDirty bool

	// HashUntracked includes untracked files in the worktree hash.
	// Only meaningful when AllowDirty is set.
	HashUntracked bool
}

// RequireClean refuses to build if the worktree has uncommitted changes.
func RequireClean() Policy {
	return Policy{}
}

// AllowDirty permits dirty builds, optionally hashing untracked files
// into the identity.
func AllowDirty(hashUntracked bool) Policy {
	return Policy{AllowDirty: true, HashUntracked: hashUntracked}
}
