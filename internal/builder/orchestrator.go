// Package builder owns the end-to-end local-build flow: preflight,
// cache check, per-key locking, external build invocation, output
// validation, atomic publish, and provenance.
package builder

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/zcash-infra/zartifacts/internal/artifact"
	"github.com/zcash-infra/zartifacts/internal/cache"
	"github.com/zcash-infra/zartifacts/internal/registry"
)

// GitState provides the repository-state capabilities the orchestrator
// consumes. The production implementation lives in internal/gitstate.
type GitState interface {
	// ResolveCommit resolves a refspec to a full commit SHA.
	ResolveCommit(repo, refspec string) (string, error)

	// IsDirty reports whether the worktree has uncommitted changes.
	IsDirty(repo string) (bool, error)

	// WorktreeHash computes a deterministic content hash over tracked
	// files, and untracked files too when includeUntracked is set.
	WorktreeHash(repo string, includeUntracked bool) (string, error)
}

// Request carries everything needed to resolve one local build.
type Request struct {
	Spec *registry.Spec
	Repo string

	// Refspec defaults to HEAD.
	Refspec string

	Policy artifact.Policy

	// ExpectedOutput overrides the recipe's reported output path.
	// Relative paths are taken relative to Repo.
	ExpectedOutput string

	// Jobs must be positive; the resolver applies its default first.
	Jobs int
}

// Orchestrator turns build requests into cached executable paths.
//
// Resolution is synchronous and may block for the duration of a full
// native build. Concurrent resolutions of different keys never contend;
// concurrent resolutions of the same key are serialized by the per-key
// lock and exactly one of them performs the build.
type Orchestrator struct {
	CacheRoot string
	Platform  string
	Git       GitState

	// Index, when non-nil, receives an advisory record per publish.
	// Index failures never fail a resolution.
	Index *cache.Index

	Log *slog.Logger

	// lookPath is swappable for preflight tests.
	lookPath func(string) (string, error)
}

// New constructs an orchestrator rooted at cacheRoot for the given
// platform triple.
func New(cacheRoot, platform string, git GitState) *Orchestrator {
	return &Orchestrator{
		CacheRoot: cacheRoot,
		Platform:  platform,
		Git:       git,
		Log:       slog.Default(),
		lookPath:  exec.LookPath,
	}
}

// Resolve runs the build flow: preflight, identity derivation,
// pre-lock cache check, lock, post-lock re-check, build, validate,
// publish, provenance. On success the returned path points at the
// published executable inside the cache.
func (o *Orchestrator) Resolve(req Request) (artifact.Resolved, error) {
	refspec := req.Refspec
	if refspec == "" {
		refspec = "HEAD"
	}

	jobs := req.Jobs
	if jobs < 1 {
		jobs = runtime.NumCPU()
	}

	// Capability check before touching the cache: a build that cannot
	// possibly run should not create directories.
	if err := o.preflight(req.Spec.Recipe.RequiredTools()); err != nil {
		return artifact.Resolved{}, err
	}

	commit, err := o.Git.ResolveCommit(req.Repo, refspec)
	if err != nil {
		return artifact.Resolved{}, err
	}

	dirty, err := o.Git.IsDirty(req.Repo)
	if err != nil {
		return artifact.Resolved{}, err
	}

	if dirty && !req.Policy.AllowDirty {
		return artifact.Resolved{}, &artifact.DirtyWorktreeError{Repo: req.Repo}
	}

	var worktreeHash string
	if dirty {
		worktreeHash, err = o.Git.WorktreeHash(req.Repo, req.Policy.HashUntracked)
		if err != nil {
			return artifact.Resolved{}, err
		}
	}

	key := cache.Key(commit, worktreeHash, o.Platform, cache.SchemaVersion)
	paths := cache.Layout(o.CacheRoot, string(req.Spec.ID), key)
	outBin := filepath.Join(paths.Out, req.Spec.BinaryNames[0])

	log := o.Log.With("service", req.Spec.ID, "key", key)

	// Optimistic pre-lock check. Racy by design; correctness rests on
	// the post-lock re-check.
	if ok, err := cache.LooksExecutable(outBin); err != nil {
		return artifact.Resolved{}, err
	} else if ok {
		log.Debug("cache hit")
		return artifact.Resolved{Path: outBin}, nil
	}

	for _, dir := range []string{paths.Out, paths.Logs, paths.Meta} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return artifact.Resolved{}, &artifact.FsError{Op: "mkdir", Path: dir, Err: err}
		}
	}

	lock, err := cache.AcquireLock(paths.Lock)
	if err != nil {
		return artifact.Resolved{}, err
	}
	defer lock.Release()

	// A concurrent holder may have just finished; re-check so only one
	// resolution per key ever runs the build.
	if ok, err := cache.LooksExecutable(outBin); err != nil {
		return artifact.Resolved{}, err
	} else if ok {
		log.Debug("cache hit after lock")
		return artifact.Resolved{Path: outBin}, nil
	}

	logPath := filepath.Join(paths.Logs, buildLogName(time.Now()))
	log.Info("building", "repo", req.Repo, "commit", commit, "dirty", dirty, "jobs", jobs, "log", logPath)

	recipeOutput, err := req.Spec.Recipe.Build(req.Repo, jobs, logPath)
	if err != nil {
		return artifact.Resolved{}, err
	}

	expected := req.ExpectedOutput
	if expected == "" {
		expected = recipeOutput
	}
	if expected == "" {
		expected = req.Spec.DefaultOutput
	}
	if !filepath.IsAbs(expected) {
		expected = filepath.Join(req.Repo, expected)
	}

	if ok, err := cache.LooksExecutable(expected); err != nil {
		return artifact.Resolved{}, err
	} else if !ok {
		return artifact.Resolved{}, &artifact.MissingOutputError{Expected: expected}
	}

	if err := cache.PublishExecutable(expected, outBin); err != nil {
		return artifact.Resolved{}, err
	}

	prov := &cache.Provenance{
		Service:       string(req.Spec.ID),
		Source:        "local-repo",
		Repo:          req.Repo,
		Refspec:       refspec,
		Commit:        commit,
		Dirty:         dirty,
		Jobs:          jobs,
		Host:          o.Platform,
		BuiltAt:       time.Now().UTC(),
		BuilderSchema: cache.SchemaVersion,
	}
	if worktreeHash != "" {
		prov.WorktreeHash = &worktreeHash
	}

	// Version probe is advisory: a failure means no version recorded,
	// never a failed resolution.
	if req.Spec.Probe != nil {
		if v, ok := req.Spec.Probe.Probe(outBin); ok {
			prov.VersionString = &v
		}
	}

	if err := cache.WriteProvenance(paths.Meta, prov); err != nil {
		return artifact.Resolved{}, err
	}

	o.recordIndex(log, req.Spec, key, outBin, prov)

	log.Info("published", "path", outBin)

	return artifact.Resolved{Path: outBin}, nil
}

func (o *Orchestrator) preflight(tools []string) error {
	lookPath := o.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	var missing []string
	for _, tool := range tools {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return &artifact.PreflightError{Missing: missing}
	}

	return nil
}

func (o *Orchestrator) recordIndex(log *slog.Logger, spec *registry.Spec, key, outBin string, prov *cache.Provenance) {
	if o.Index == nil {
		return
	}

	var size int64
	if info, err := os.Stat(outBin); err == nil {
		size = info.Size()
	}

	err := o.Index.Put(cache.IndexEntry{
		Service: string(spec.ID),
		Key:     key,
		Path:    outBin,
		Size:    size,
		Commit:  prov.Commit,
		Dirty:   prov.Dirty,
		BuiltAt: prov.BuiltAt,
	})
	if err != nil {
		log.Warn("failed to record artifact in cache index", "error", err)
	}
}

// buildLogName names one build attempt's log. Nanosecond precision
// keeps concurrent and rapid successive attempts from colliding; logs
// are never overwritten.
func buildLogName(t time.Time) string {
	return "build-" + t.UTC().Format("2006-01-02T15-04-05.000000000") + ".log"
}
