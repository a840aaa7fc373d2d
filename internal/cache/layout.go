package cache

import "path/filepath"

// Paths locates the subareas of one cache entry. Values are derived
// purely from the inputs; nothing here touches the filesystem and
// callers are responsible for directory creation.
type Paths struct {
	// Root is <cache_root>/<service>/<key>.
	Root string

	// Out holds the published executable. out/<binary> is the only
	// contractually stable path external tooling should depend on.
	Out string

	// Logs holds one log file per build attempt.
	Logs string

	// Meta holds the META.json provenance record.
	Meta string

	// Lock is the per-key lock file guarding the build-and-finalize
	// phase.
	Lock string
}

// Layout maps (cacheRoot, service, key) to the entry's directory
// hierarchy.
func Layout(cacheRoot, service, key string) Paths {
	root := filepath.Join(cacheRoot, service, key)

	return Paths{
		Root: root,
		Out:  filepath.Join(root, "out"),
		Logs: filepath.Join(root, "logs"),
		Meta: filepath.Join(root, "meta"),
		Lock: filepath.Join(root, ".lock"),
	}
}
