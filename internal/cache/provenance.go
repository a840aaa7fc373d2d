package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zcash-infra/zartifacts/internal/artifact"
)

// MetaFileName is the provenance document inside a key's meta/ area.
const MetaFileName = "META.json"

// Provenance records how an artifact was produced. It is written only
// on a successful build, never on a cache hit, and is advisory: the
// validated executable in out/ is the source of truth for "cached".
type Provenance struct {
	Service       string    `json:"service"`
	Source        string    `json:"source"`
	Repo          string    `json:"repo"`
	Refspec       string    `json:"refspec"`
	Commit        string    `json:"commit"`
	Dirty         bool      `json:"dirty"`
	WorktreeHash  *string   `json:"worktree_hash"`
	Jobs          int       `json:"jobs"`
	Host          string    `json:"host"`
	BuiltAt       time.Time `json:"built_at"`
	BuilderSchema int       `json:"builder_schema"`
	VersionString *string   `json:"version_string"`
}

// WriteProvenance serializes p to metaDir/META.json via atomic replace:
// either the whole new record lands, or a pre-existing record remains
// untouched on failure.
func WriteProvenance(metaDir string, p *Provenance) error {
	if err := os.MkdirAll(metaDir, 0o755); err != nil {
		return &artifact.FsError{Op: "mkdir", Path: metaDir, Err: err}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return &artifact.FsError{Op: "marshal provenance for", Path: metaDir, Err: err}
	}

	return writeFileAtomic(filepath.Join(metaDir, MetaFileName), append(data, '\n'), 0o644)
}

// ReadProvenance loads the provenance record from metaDir, if present.
// Returns (nil, nil) when no record exists.
func ReadProvenance(metaDir string) (*Provenance, error) {
	path := filepath.Join(metaDir, MetaFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &artifact.FsError{Op: "read", Path: path, Err: err}
	}

	var p Provenance
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &artifact.FsError{Op: "parse", Path: path, Err: err}
	}

	return &p, nil
}
