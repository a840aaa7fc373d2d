// Package cache implements the content-addressed artifact cache: key
// derivation, directory layout, executable validation, per-key locking,
// atomic publishing, provenance records, and an advisory bbolt index.
//
// The cache stores one immutable directory per key under
// <cache_root>/<service>/<key>/ with three independent subareas:
//
//	out/   final runnable binaries returned to callers
//	logs/  one append-only log per build attempt, timestamp-named
//	meta/  META.json provenance, overwritten on each successful build
//
// The presence of a validated executable in out/ is the sole
// authoritative signal that a key is cached; meta/ and the index are
// advisory. Keys are immutable, so operators can delete any key
// directory at will.
package cache

import "fmt"

// SchemaVersion is baked into every cache key. Bump it whenever the
// cache layout or build recipe changes in a way that would otherwise
// silently serve stale results under a matching key.
const SchemaVersion = 1

// Key derives the identity string for one buildable configuration:
//
//	<commit>[+<worktreeHash>].<platform>.v<schema>
//
// commit must be a full SHA (abbreviation risks collision) and
// worktreeHash, when present, a hex digest over worktree contents.
// Neither contains '.' or '+', and platform triples contain no '.', so
// the encoding is unambiguous. Two requests with identical inputs
// always derive the same key; a clean build and a dirty build of the
// same commit never collide because worktreeHash presence is itself
// part of the identity.
func Key(commit, worktreeHash, platform string, schema int) string {
	id := commit
	if worktreeHash != "" {
		id += "+" + worktreeHash
	}

	return fmt.Sprintf("%s.%s.v%d", id, platform, schema)
}
