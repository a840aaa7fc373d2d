// Package registry maps service identifiers to the descriptor bundle
// the resolver needs: candidate binary names, the default build output
// path, and optional build and version-probe capabilities. Specs are
// resolved once at startup; callers can supply their own capabilities
// in place of the builtins.
package registry

// ServiceID identifies a buildable service.
type ServiceID string

const (
	Zcashd ServiceID = "zcashd"
	Zebrad ServiceID = "zebrad"
)

// BuildRecipe runs an external build for a service.
type BuildRecipe interface {
	// RequiredTools lists the executables that must be on PATH for the
	// build to have any chance of succeeding.
	RequiredTools() []string

	// Build runs the external build process for the repository with the
	// given parallel job count, capturing all output in the log file.
	// It returns the repo-relative (or absolute) path of the produced
	// binary. Build output is never interpreted here; failures carry
	// the exit code and log path.
	Build(repo string, jobs int, logPath string) (string, error)
}

// VersionProbe extracts a human-readable version string from a binary.
type VersionProbe interface {
	// Probe returns the version string and true, or "" and false when
	// no version could be determined. Probe failures are advisory.
	Probe(exe string) (string, bool)
}

// Spec describes how to handle one service.
type Spec struct {
	ID ServiceID

	// BinaryNames are candidate executable names, most specific first.
	// The first entry is the name published into the cache's out/ area.
	BinaryNames []string

	// DefaultOutput is the repo-relative path where a local build
	// leaves the binary, used when the caller does not override it.
	DefaultOutput string

	// Recipe builds the service from a local repository. Nil means the
	// service cannot be built locally.
	Recipe BuildRecipe

	// Probe extracts a version string from a built binary. Optional.
	Probe VersionProbe
}

// Registry holds the known service specs.
type Registry struct {
	specs map[ServiceID]*Spec
}

// WithBuiltins returns a registry preloaded with the zcashd and zebrad
// specs.
func WithBuiltins() *Registry {
	r := Empty()
	r.Register(specZcashd())
	r.Register(specZebrad())

	return r
}

// Empty returns a registry with no specs.
func Empty() *Registry {
	return &Registry{specs: make(map[ServiceID]*Spec)}
}

// Register adds or replaces a spec.
func (r *Registry) Register(s *Spec) {
	r.specs[s.ID] = s
}

// Get looks up the spec for a service.
func (r *Registry) Get(id ServiceID) (*Spec, bool) {
	s, ok := r.specs[id]
	return s, ok
}
