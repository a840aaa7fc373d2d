// Package resolver is the public entry point: it dispatches an artifact
// source to the matching resolution path and returns a uniform resolved
// artifact, so callers never branch on source kind after resolution.
package resolver

import (
	"errors"
	"log/slog"
	"os"

	"github.com/zcash-infra/zartifacts/internal/artifact"
	"github.com/zcash-infra/zartifacts/internal/builder"
	"github.com/zcash-infra/zartifacts/internal/cache"
	"github.com/zcash-infra/zartifacts/internal/gitstate"
	"github.com/zcash-infra/zartifacts/internal/platform"
	"github.com/zcash-infra/zartifacts/internal/registry"
)

// ReleaseFetcher downloads, verifies, and unpacks a published release
// binary, returning the executable's path. Transport is out of scope
// here; implementations are injected.
type ReleaseFetcher interface {
	Fetch(service registry.ServiceID, version, platform string) (string, error)
}

// URLFetcher downloads and verifies a binary from an arbitrary URL.
type URLFetcher interface {
	FetchURL(url, checksum string) (string, error)
}

// OCIPuller extracts a binary from an OCI image.
type OCIPuller interface {
	Pull(reference, digest string) (string, error)
}

// Config is the immutable process-wide configuration for a Resolver.
type Config struct {
	// CacheRoot is the content-addressed cache directory.
	CacheRoot string

	// PlatformOverride pins the platform triple; empty means detect.
	PlatformOverride string

	// AllowBuild enables the local-build resolution path.
	AllowBuild bool

	// DefaultJobs is used when a build request carries no job count.
	// Zero means the number of CPUs.
	DefaultJobs int
}

// Resolver resolves artifact sources into runnable executable paths.
type Resolver struct {
	cfg      Config
	platform string
	registry *registry.Registry
	git      builder.GitState
	fetcher  ReleaseFetcher
	urls     URLFetcher
	oci      OCIPuller
	index    *cache.Index
	log      *slog.Logger
}

// Option customizes a Resolver at construction.
type Option func(*Resolver)

// WithRegistry replaces the builtin service registry.
func WithRegistry(r *registry.Registry) Option {
	return func(res *Resolver) { res.registry = r }
}

// WithGitState replaces the go-git-backed repository inspector.
func WithGitState(g builder.GitState) Option {
	return func(res *Resolver) { res.git = g }
}

// WithReleaseFetcher enables the release-download resolution path.
func WithReleaseFetcher(f ReleaseFetcher) Option {
	return func(res *Resolver) { res.fetcher = f }
}

// WithURLFetcher enables the URL resolution path.
func WithURLFetcher(f URLFetcher) Option {
	return func(res *Resolver) { res.urls = f }
}

// WithOCIPuller enables the OCI image resolution path.
func WithOCIPuller(p OCIPuller) Option {
	return func(res *Resolver) { res.oci = p }
}

// WithIndex attaches the advisory cache index.
func WithIndex(ix *cache.Index) Option {
	return func(res *Resolver) { res.index = ix }
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(res *Resolver) { res.log = log }
}

// New constructs a Resolver. Absent collaborators leave their source
// kinds resolvable only into a DisabledError, keeping behavior uniform
// across deployment configurations.
func New(cfg Config, opts ...Option) *Resolver {
	r := &Resolver{
		cfg:      cfg,
		platform: platform.Triple(cfg.PlatformOverride),
		registry: registry.WithBuiltins(),
		git:      gitstate.New(),
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Platform returns the platform triple this resolver targets.
func (r *Resolver) Platform() string {
	return r.platform
}

// Resolve routes a source to its resolution path. Whatever the path,
// the result is a validated executable path.
func (r *Resolver) Resolve(src artifact.Source) (artifact.Resolved, error) {
	switch s := src.(type) {
	case artifact.LocalPath:
		return r.resolveLocalPath(s.Path)

	case artifact.Release:
		if r.fetcher == nil {
			return artifact.Resolved{}, &artifact.DisabledError{Capability: "release download"}
		}
		path, err := r.fetcher.Fetch(registry.ServiceID(s.Service), s.Version, r.platform)
		if err != nil {
			return artifact.Resolved{}, err
		}
		return r.resolveLocalPath(path)

	case artifact.Build:
		return r.resolveBuild(s)

	case artifact.URL:
		if r.urls == nil {
			return artifact.Resolved{}, &artifact.DisabledError{Capability: "http fetch"}
		}
		path, err := r.urls.FetchURL(s.URL, s.Checksum)
		if err != nil {
			return artifact.Resolved{}, err
		}
		return r.resolveLocalPath(path)

	case artifact.OCIImage:
		if r.oci == nil {
			return artifact.Resolved{}, &artifact.DisabledError{Capability: "oci pull"}
		}
		path, err := r.oci.Pull(s.Reference, s.Digest)
		if err != nil {
			return artifact.Resolved{}, err
		}
		return r.resolveLocalPath(path)

	default:
		return artifact.Resolved{}, &artifact.InputError{Reason: "unsupported artifact source"}
	}
}

// resolveLocalPath validates an existing on-disk executable. No cache
// involvement.
func (r *Resolver) resolveLocalPath(path string) (artifact.Resolved, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return artifact.Resolved{}, &artifact.InputError{Path: path, Reason: "path does not exist or is not a file"}
		}
		return artifact.Resolved{}, &artifact.FsError{Op: "stat", Path: path, Err: err}
	}

	ok, err := cache.LooksExecutable(path)
	if err != nil {
		return artifact.Resolved{}, err
	}
	if !ok {
		return artifact.Resolved{}, &artifact.InputError{Path: path, Reason: "path is not executable"}
	}

	return artifact.Resolved{Path: path}, nil
}

func (r *Resolver) resolveBuild(src artifact.Build) (artifact.Resolved, error) {
	if !r.cfg.AllowBuild {
		return artifact.Resolved{}, &artifact.DisabledError{Capability: "local build"}
	}

	service := src.Service
	if service == "" {
		service = string(registry.Zcashd)
	}

	spec, ok := r.registry.Get(registry.ServiceID(service))
	if !ok {
		return artifact.Resolved{}, &artifact.UnknownServiceError{Service: service}
	}
	if spec.Recipe == nil {
		return artifact.Resolved{}, &artifact.DisabledError{Capability: "local build of " + service}
	}

	if src.Repo == "" {
		return artifact.Resolved{}, &artifact.InputError{Reason: "build source requires a repository path"}
	}

	jobs := src.Jobs
	if jobs < 1 {
		jobs = r.cfg.DefaultJobs
	}

	orch := builder.New(r.cfg.CacheRoot, r.platform, r.git)
	orch.Index = r.index
	orch.Log = r.log

	return orch.Resolve(builder.Request{
		Spec:           spec,
		Repo:           src.Repo,
		Refspec:        src.Refspec,
		Policy:         src.Policy,
		ExpectedOutput: src.ExpectedOutput,
		Jobs:           jobs,
	})
}
