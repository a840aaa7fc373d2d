// Package gitstate implements the repository-state capabilities the
// build orchestrator consumes: refspec resolution, dirty detection, and
// deterministic worktree content hashing. Built on go-git so no git
// binary is required for state inspection.
package gitstate

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// State inspects local git repositories.
type State struct{}

// New returns a repository-state inspector.
func New() *State {
	return &State{}
}

func open(repo string) (*gogit.Repository, error) {
	r, err := gogit.PlainOpenWithOptions(repo, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %s: %w", repo, err)
	}

	return r, nil
}

// ResolveCommit resolves a refspec (tag, branch, or commit) to a full
// commit SHA.
func (s *State) ResolveCommit(repo, refspec string) (string, error) {
	r, err := open(repo)
	if err != nil {
		return "", err
	}

	rev, err := r.ResolveRevision(plumbing.Revision(refspec))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q in %s: %w", refspec, repo, err)
	}

	return rev.String(), nil
}

// IsDirty reports whether the worktree has uncommitted changes,
// including untracked files.
func (s *State) IsDirty(repo string) (bool, error) {
	r, err := open(repo)
	if err != nil {
		return false, err
	}

	wt, err := r.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to open worktree of %s: %w", repo, err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read status of %s: %w", repo, err)
	}

	return !status.IsClean(), nil
}

// WorktreeHash computes a deterministic SHA-256 digest over the
// contents of all tracked files in the worktree, and over untracked
// files as well when includeUntracked is set. Any content difference
// changes the digest, which keeps dirty builds of the same commit
// isolated from each other in the cache.
func (s *State) WorktreeHash(repo string, includeUntracked bool) (string, error) {
	r, err := open(repo)
	if err != nil {
		return "", err
	}

	wt, err := r.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree of %s: %w", repo, err)
	}

	root := wt.Filesystem.Root()

	paths := make(map[string]struct{})

	idx, err := r.Storer.Index()
	if err != nil {
		return "", fmt.Errorf("failed to read index of %s: %w", repo, err)
	}
	for _, entry := range idx.Entries {
		paths[entry.Name] = struct{}{}
	}

	if includeUntracked {
		status, err := wt.Status()
		if err != nil {
			return "", fmt.Errorf("failed to read status of %s: %w", repo, err)
		}

		for path, st := range status {
			if st.Worktree == gogit.Untracked {
				paths[path] = struct{}{}
			}
		}
	}

	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	h := sha256.New()
	for _, path := range sorted {
		writeLengthPrefixed(h, []byte(path))

		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(path)))
		if err != nil {
			if os.IsNotExist(err) {
				// Tracked but deleted from the worktree; the absence
				// itself must change the digest.
				writeLengthPrefixed(h, []byte("<deleted>"))
				continue
			}
			return "", fmt.Errorf("failed to hash %s: %w", path, err)
		}

		writeLengthPrefixed(h, content)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeLengthPrefixed frames each component so that concatenation of
// adjacent values cannot produce colliding digests.
func writeLengthPrefixed(h hash.Hash, data []byte) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(data)))
	h.Write(length[:])
	h.Write(data)
}
