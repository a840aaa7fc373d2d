package gitstate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	writeAndCommit(t, dir, "main.txt", "initial content\n")

	return dir
}

func writeAndCommit(t *testing.T, dir, name, content string) string {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))

	repo, err := gogit.PlainOpen(dir)
	require.NoError(t, err)

	wt, err := repo.Worktree()
	require.NoError(t, err)

	_, err = wt.Add(name)
	require.NoError(t, err)

	hash, err := wt.Commit("update "+name, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "test",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	require.NoError(t, err)

	return hash.String()
}

func TestResolveCommit_HEAD(t *testing.T) {
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	want := writeAndCommit(t, dir, "main.txt", "content\n")

	got, err := New().ResolveCommit(dir, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, got, 40, "commits must be full SHAs, never abbreviated")
}

func TestResolveCommit_BadRefspec(t *testing.T) {
	dir := initRepo(t)

	_, err := New().ResolveCommit(dir, "no-such-ref")
	assert.Error(t, err)
}

func TestResolveCommit_NotARepo(t *testing.T) {
	_, err := New().ResolveCommit(t.TempDir(), "HEAD")
	assert.Error(t, err)
}

func TestIsDirty(t *testing.T) {
	dir := initRepo(t)
	s := New()

	dirty, err := s.IsDirty(dir)
	require.NoError(t, err)
	assert.False(t, dirty, "freshly committed worktree is clean")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.txt"), []byte("edited\n"), 0o644))

	dirty, err = s.IsDirty(dir)
	require.NoError(t, err)
	assert.True(t, dirty, "uncommitted edit makes the worktree dirty")
}

func TestIsDirty_UntrackedFile(t *testing.T) {
	dir := initRepo(t)
	s := New()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip\n"), 0o644))

	dirty, err := s.IsDirty(dir)
	require.NoError(t, err)
	assert.True(t, dirty)
}

func TestWorktreeHash_Deterministic(t *testing.T) {
	dir := initRepo(t)
	s := New()

	a, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)
	assert.NotEmpty(t, a)

	b, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)
	assert.Equal(t, a, b, "hash must be stable across repeated computations")
}

func TestWorktreeHash_ChangesWithContent(t *testing.T) {
	dir := initRepo(t)
	s := New()

	before, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.txt"), []byte("edited\n"), 0o644))

	after, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "any content difference must change the hash")
}

func TestWorktreeHash_UntrackedOnlyWhenRequested(t *testing.T) {
	dir := initRepo(t)
	s := New()

	trackedOnly, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("wip\n"), 0o644))

	ignoringUntracked, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)
	assert.Equal(t, trackedOnly, ignoringUntracked, "untracked files are excluded by default")

	withUntracked, err := s.WorktreeHash(dir, true)
	require.NoError(t, err)
	assert.NotEqual(t, trackedOnly, withUntracked, "untracked content must alter the hash when requested")
}

func TestWorktreeHash_DeletedTrackedFile(t *testing.T) {
	dir := initRepo(t)
	s := New()

	before, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "main.txt")))

	after, err := s.WorktreeHash(dir, false)
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "deleting a tracked file must change the hash")
}
